// Package lock provides per-listing mutual exclusion for the marketplace coordinator.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrLockTimeout is returned when a listing stays busy longer than the acquire timeout
var ErrLockTimeout = errors.New("timed out waiting for listing lock")

// LocalLocker serializes work per listing inside one process.
// Waiters honour context cancellation and the acquire timeout.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[uuid.UUID]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker. A non-positive timeout waits until ctx ends.
func NewLocalLocker(timeout time.Duration) *LocalLocker {
	return &LocalLocker{
		slots:   make(map[uuid.UUID]*slot),
		timeout: timeout,
	}
}

// Acquire blocks until the listing lock is held, ctx ends, or the timeout passes
func (l *LocalLocker) Acquire(ctx context.Context, listingID uuid.UUID) (func(), error) {
	s := l.ref(listingID)

	var timeout <-chan time.Time
	if l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(listingID)
		return nil, ctx.Err()
	case <-timeout:
		l.unref(listingID)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(listingID)
		})
	}, nil
}

func (l *LocalLocker) ref(id uuid.UUID) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[id]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

// held reports how many listings currently have holders or waiters
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

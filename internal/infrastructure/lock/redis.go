package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces listing locks in redis
const KeyPrefix = "market:listing:"

// RedisOptions tunes the distributed listing lock
type RedisOptions struct {
	Expiry     time.Duration // lock TTL; a crashed holder frees the listing after this
	Timeout    time.Duration // how long to keep retrying a busy listing
	RetryDelay time.Duration
}

// RedisLocker serializes work per listing across processes using a redsync mutex
// keyed market:listing:<id>
type RedisLocker struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker over an existing go-redis client
func NewRedisLocker(client redis.UniversalClient, opts RedisOptions, logger *zap.Logger) *RedisLocker {
	if opts.Expiry <= 0 {
		opts.Expiry = 8 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 25 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger,
	}
}

// Acquire takes the distributed lock for the listing, retrying until the timeout
func (l *RedisLocker) Acquire(ctx context.Context, listingID uuid.UUID) (func(), error) {
	tries := int(l.opts.Timeout/l.opts.RetryDelay) + 1
	mutex := l.rs.NewMutex(KeyPrefix+listingID.String(),
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, redsync.ErrFailed) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); err != nil || !ok {
			l.logger.Warn("Listing lock release failed",
				zap.String("listing_id", listingID.String()),
				zap.Bool("held", ok),
				zap.Error(err))
		}
	}, nil
}

// Package testutil provides helpers shared by the marketplace integration tests:
// a JSON client for the HTTP API, a recording event handler and polling assertions.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID returns a deterministic UUID for seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// ContextWithTimeout returns a context cancelled on test cleanup
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Date returns the YYYY-MM-DD form of today plus days, in UTC
func Date(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

// AssertEventually asserts that condition becomes true within timeout
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Eventually(t, condition, timeout, interval, msgAndArgs...)
}

// RequireEventually is AssertEventually that stops the test on failure
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, condition, timeout, interval, msgAndArgs...)
}

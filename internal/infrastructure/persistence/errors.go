package persistence

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/swapmarket/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that signal a transaction lost a race and may be retried
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// mapError translates driver errors into domain errors.
// Record-not-found becomes shared.ErrNotFound and serialization failures become
// the retryable shared.ErrConcurrencyConflict. op names the failed operation.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isRetryableConflict(err) {
		return shared.ErrConcurrencyConflict
	}
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return true
		}
	}
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

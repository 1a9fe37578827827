package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	errDeadlock        = 1213
	errLockWaitTimeout = 1205
)

// Waits before the second and third attempt.
var lockRetryBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}

func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}

// withLockRetry runs fn once plus once per backoff while it keeps failing on
// lock conflicts. Each wait gets up to 20% jitter.
func withLockRetry(ctx context.Context, backoffs []time.Duration, fn func() error) error {
	err := fn()
	for attempt := 0; attempt < len(backoffs) && isLockConflict(err); attempt++ {
		wait := backoffs[attempt] + time.Duration(rand.Float64()*0.2*float64(backoffs[attempt]))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = fn()
	}

	if isLockConflict(err) {
		return fmt.Errorf("giving up after %d attempts: %w", len(backoffs)+1, err)
	}
	return err
}

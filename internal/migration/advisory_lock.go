package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const advisoryLockKey int64 = 5_010_501_221

type unlockFunc func(ctx context.Context) error

// acquireAdvisoryLock takes the session-level migration lock on conn. Session
// locks belong to one backend, so lock and unlock must share the connection.
func acquireAdvisoryLock(ctx context.Context, conn *sql.Conn) (unlockFunc, error) {
	if conn == nil {
		return nil, errors.New("advisory lock requires a database connection")
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another migration process holds the advisory lock")
	}

	return func(ctx context.Context) error {
		var released bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockKey).Scan(&released); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		if !released {
			return errors.New("advisory lock was not held by this session")
		}
		return nil
	}, nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Storage failure kinds. Repos wrap the driver error with exactly one
// of these so that handlers can map failures to response codes via
// errors.Is instead of matching on error strings.
var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryFailed      = errors.New("database query failed")
	ErrWriteFailed      = errors.New("database write failed")
)

// QueryError wraps err as a read failure, or as a connection failure
// when the root cause is connectivity.
func QueryError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrQueryFailed, err)
}

// WriteError wraps err as a write failure, or as a connection failure
// when the root cause is connectivity.
func WriteError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}

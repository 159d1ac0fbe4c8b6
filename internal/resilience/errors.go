// Package resilience provides retry and circuit breaker helpers for database
// transactions and cache calls.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the retry policy cares about.
const (
	PgUniqueViolation      = "23505"
	PgSerializationFailure = "40001"
	PgDeadlockDetected     = "40P01"
	PgAdminShutdown        = "57P01"
	PgCannotConnectNow     = "57P03"
)

// PgCode returns the SQLSTATE of the first *pgconn.PgError in err's chain,
// or "" when there is none.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return PgCode(err) == PgUniqueViolation
}

// IsTransient reports whether err is worth retrying unchanged: lost or
// refused connections, timeouts, serialization failures and deadlocks.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	switch code := PgCode(err); {
	case code == PgSerializationFailure, code == PgDeadlockDetected,
		code == PgAdminShutdown, code == PgCannotConnectNow:
		return true
	case strings.HasPrefix(code, "08"): // connection exception class
		return true
	case code != "":
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection reset", "connection refused", "broken pipe", "i/o timeout", "unexpected eof"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsRetryableTx reports whether a find-or-create transaction should be
// re-run. A unique violation means a concurrent writer won the race, so the
// next attempt will find its row.
func IsRetryableTx(err error) bool {
	return IsUniqueViolation(err) || IsTransient(err)
}

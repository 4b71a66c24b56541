package storage

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"NewsDedup/internal/domain"
)

// classify wraps err into a domain.Failure. Connection and authentication
// problems are reported as connectivity regardless of fallback.
func classify(op string, err error, fallback domain.FailureKind) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	kind := fallback
	if isConnectivity(err) {
		kind = domain.FailureConnectivity
	}
	return domain.NewFailure(kind, op, err)
}

func isConnectivity(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return connectivityState(string(pqErr.Code))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return connectivityState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// connectivityState matches SQLSTATE classes 08 (connection exception),
// 28 (invalid authorization) and 57P0x (operator intervention).
func connectivityState(code string) bool {
	return strings.HasPrefix(code, "08") ||
		strings.HasPrefix(code, "28") ||
		strings.HasPrefix(code, "57P0")
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"NewsDedup/internal/domain"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// PlaceholderFor returns the bind-variable style of a driver.
func PlaceholderFor(driver string) sq.PlaceholderFormat {
	if driver == DriverSQLite {
		return sq.Question
	}
	return sq.Dollar
}

// Open connects to the database and verifies the connection with a ping.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return nil, domain.NewFailure(domain.FailureConfiguration, "open database",
			fmt.Errorf("unsupported driver %q", driver))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, domain.NewFailure(domain.FailureConfiguration, "open database", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.NewFailure(domain.FailureConnectivity, "ping database", err)
	}
	return db, nil
}

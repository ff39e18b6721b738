package postgres

import (
	"context"
	"strings"

	"rxprev/internal/errors"
	"rxprev/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names accepted by Open
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DriverFor picks the database/sql driver and DSN for a DATABASE_URL.
// postgres:// and postgresql:// go to lib/pq; sqlite3:// and sqlite://
// strip the scheme and go to go-sqlite3.
func DriverFor(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite3://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite3://"), nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	}
	return "", "", errors.ConfigInvalid("unsupported DATABASE_URL scheme: " + url)
}

// Open connects to the database named by url and runs the migrations.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	driver, dsn, err := DriverFor(url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == DriverSQLite {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, errors.DatabaseError("failed to enable foreign keys", err)
		}
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.DatabaseError("database migration failed", err)
	}
	return db, nil
}

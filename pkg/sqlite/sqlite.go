// Package sqlite opens embedded SQLite databases through the pure-Go modernc driver.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// New opens the database file at path, creating it if needed. SQLite allows a
// single writer, so the pool is limited to one connection.
func New(ctx context.Context, path string) (*sqlx.DB, error) {
	const op = "sqlite.New"

	db, err := sqlx.ConnectContext(ctx, driverName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to configure database: %w", op, err)
	}

	return db, nil
}

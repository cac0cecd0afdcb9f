// Package migrations embeds the schema for each supported database engine
// and applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns a migrator for the PostgreSQL database at databaseURL.
// Close it when done.
func Postgres(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "postgres")
	if err != nil {
		return nil, fmt.Errorf("load postgres migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init postgres migrations: %w", err)
	}
	m.Log = Logger{}
	return m, nil
}

// SQLite returns a migrator bound to an open SQLite handle.
// Closing the migrator closes db.
func SQLite(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("load sqlite migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("init sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("init sqlite migrations: %w", err)
	}
	m.Log = Logger{}
	return m, nil
}

// Up applies all pending migrations. Being already current is not an error.
func Up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Logger forwards golang-migrate output to slog.
type Logger struct{}

func (Logger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrate")
}

func (Logger) Verbose() bool { return false }

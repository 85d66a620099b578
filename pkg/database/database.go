// Package database opens the gamerdb store through go-persistence-bun and
// applies the embedded migrations for the configured dialect.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/catalog"
	"github.com/goliatone/go-gamerdb/guilds"
	"github.com/goliatone/go-gamerdb/migrations"
	"github.com/goliatone/go-gamerdb/profile"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLiteDSN is used when the sqlite driver is configured without a DSN.
const DefaultSQLiteDSN = "file:gamerdb.db?_journal_mode=WAL&_fk=1"

// Open connects to the configured database and returns the persistence
// client. Call Migrate before building repositories on a fresh store.
func Open(cfg persistence.Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database: config required")
	}
	driver := NormalizeDriver(cfg.GetDriver())
	dsn := strings.TrimSpace(cfg.GetServer())

	var (
		sqldb   *sql.DB
		dialect schema.Dialect
		err     error
	)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		sqldb, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("database: open sqlite: %w", err)
		}
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqldb.SetMaxOpenConns(1)
		dialect = sqlitedialect.New()
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("database: postgres requires a dsn")
		}
		sqldb, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("database: open postgres: %w", err)
		}
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.GetDriver())
	}

	registerModels()
	client, err := persistence.New(cfg, sqldb, dialect)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	for _, source := range migrations.Sources() {
		client.RegisterDialectMigrations(
			source.FS,
			persistence.WithDialectSourceLabel("."),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}
	return client, nil
}

// Migrate applies every registered migration.
func Migrate(ctx context.Context, client *persistence.Client) error {
	if client == nil {
		return fmt.Errorf("database: client required")
	}
	if err := client.ValidateDialects(ctx); err != nil {
		return fmt.Errorf("database: validate migrations: %w", err)
	}
	return client.Migrate(ctx)
}

// NormalizeDriver maps driver aliases onto the supported names.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func registerModels() {
	persistence.RegisterModel((*catalog.Record)(nil))
	persistence.RegisterModel((*profile.Record)(nil))
	persistence.RegisterModel((*guilds.Record)(nil))
	persistence.RegisterModel((*activity.LogEntry)(nil))
}

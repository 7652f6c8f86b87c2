package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	driver string
	create string
	get    string
	upsert string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver: "sqlite",
		create: `CREATE TABLE IF NOT EXISTS taskflow_kv (
    kv_key TEXT PRIMARY KEY,
    kv_value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
		get: `SELECT kv_value FROM taskflow_kv WHERE kv_key = ?`,
		upsert: `INSERT INTO taskflow_kv (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at`,
	},
	DriverMySQL: {
		driver: "mysql",
		create: `CREATE TABLE IF NOT EXISTS taskflow_kv (
    kv_key VARCHAR(191) PRIMARY KEY,
    kv_value LONGTEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
		get: `SELECT kv_value FROM taskflow_kv WHERE kv_key = ?`,
		upsert: `INSERT INTO taskflow_kv (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated_at = VALUES(updated_at)`,
	},
	DriverPostgres: {
		driver: "postgres",
		create: `CREATE TABLE IF NOT EXISTS taskflow_kv (
    kv_key TEXT PRIMARY KEY,
    kv_value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
		get: `SELECT kv_value FROM taskflow_kv WHERE kv_key = $1`,
		upsert: `INSERT INTO taskflow_kv (kv_key, kv_value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (kv_key) DO UPDATE SET kv_value = EXCLUDED.kv_value, updated_at = EXCLUDED.updated_at`,
	},
}

// SQL is a Backend storing keys in a single taskflow_kv table.
type SQL struct {
	db *sql.DB
	d  dialect
}

// OpenSQL connects to the database, pings it and creates the table if needed.
// name is one of DriverSQLite, DriverMySQL or DriverPostgres.
func OpenSQL(ctx context.Context, name, dsn string) (*SQL, error) {
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s storage: dsn required", name)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if name == DriverSQLite {
		// A single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}

	s := &SQL{db: db, d: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.create); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Get implements Backend.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Backend.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (s *SQL) Close() error { return s.db.Close() }

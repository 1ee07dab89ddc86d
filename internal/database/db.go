// Package database opens the SQL databases used as dictionary caches.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/at-ishikawa/isvdict/internal/config"
)

const pingAttempts = 3

// SQLiteFileName is the database file created in the cache directory by the sqlite backend.
const SQLiteFileName = "dictionary.db"

// Open opens the database for a sqlite or mysql cache backend.
// It returns the connection and a location suitable for display.
func Open(cfg config.CacheConfig) (*sqlx.DB, string, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		path := filepath.Join(cfg.Directory, SQLiteFileName)
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, "", err
		}
		return db, path, nil
	case config.BackendMySQL:
		db, err := OpenMySQL(cfg.Database)
		if err != nil {
			return nil, "", err
		}
		return db, MySQLLocation(cfg.Database), nil
	}
	return nil, "", fmt.Errorf("cache backend %q does not use a database", cfg.Backend)
}

// OpenSQLite opens a SQLite database file, creating its directory if needed.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenMySQL opens a MySQL connection using the provided config.
func OpenMySQL(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", mysqlConfig(cfg).FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	return db, nil
}

// Ping checks the connection, retrying with backoff while the server is starting up.
func Ping(ctx context.Context, db *sqlx.DB) error {
	if err := retry.Do(
		func() error {
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(pingAttempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return fmt.Errorf("db.PingContext > %w", err)
	}
	return nil
}

// MySQLLocation describes a MySQL database without its password.
func MySQLLocation(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("mysql://%s@%s:%d/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)
}

func mysqlConfig(cfg config.DatabaseConfig) *mysql.Config {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.Username
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mysqlCfg.DBName = cfg.Database
	mysqlCfg.ParseTime = true
	if cfg.TLS {
		mysqlCfg.TLSConfig = "true"
	}
	if len(cfg.Params) > 0 {
		mysqlCfg.Params = cfg.Params
	}
	return mysqlCfg
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"wishlist/internal/config"
)

const defaultCollation = "utf8mb4_unicode_ci"

func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	if dsn.Collation == "" {
		dsn.Collation = defaultCollation
	}

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id CHAR(36) NOT NULL PRIMARY KEY,
	items JSON NOT NULL,
	comment TEXT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'ordered',
	created_at DATETIME(6) NOT NULL,
	INDEX idx_orders_created_at (created_at)
) DEFAULT CHARSET = utf8mb4 COLLATE = utf8mb4_unicode_ci`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createOrdersTable); err != nil {
		return fmt.Errorf("creating orders table: %w", err)
	}
	return nil
}

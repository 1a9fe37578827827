package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"wishlist/internal/config"
)

type openFunc func(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error)

// Provider hands out one shared *sql.DB for the life of the process. The pool
// is opened and migrated on first use; a failed attempt is not cached, so the
// next caller retries.
type Provider struct {
	cfg  config.DatabaseConfig
	open openFunc

	mu sync.Mutex
	db *sql.DB
}

func NewProvider(cfg config.DatabaseConfig) *Provider {
	return &Provider{
		cfg:  cfg,
		open: openAndMigrate,
	}
}

// Static wraps an already opened pool.
func Static(db *sql.DB) *Provider {
	return &Provider{db: db}
}

func (p *Provider) DB(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}
	if p.open == nil {
		return nil, fmt.Errorf("database provider not configured")
	}

	db, err := p.open(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// Close releases the pool if it was ever opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func openAndMigrate(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

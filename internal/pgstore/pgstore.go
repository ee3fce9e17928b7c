// Package pgstore opens the Postgres backend. It shares the repositories
// of package store and only owns the pgx connection pool.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/zirakhr/zirak/internal/store"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// DB is a store.Store running on a pgx pool.
type DB struct {
	*store.Store
	pool *pgxpool.Pool
}

// Open connects, pings and migrates.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	poolConfig, err := parseConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s, err := store.New(ctx, stdlib.OpenDBFromPool(pool), dialect.Postgres)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{Store: s, pool: pool}, nil
}

// Pool exposes the underlying pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Close closes the database/sql wrapper and then the pool.
func (d *DB) Close() error {
	err := d.Store.Close()
	d.pool.Close()
	return err
}

func parseConfig(cfg Config) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: empty DSN")
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	pc.MaxConns = 25
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = 2
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxLifetime
	}
	return pc, nil
}

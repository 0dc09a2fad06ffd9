package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres mirrors the SQLite document layout over a shared database,
// selected when DATABASE_URL is configured. Same collections, jsonb docs.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) bootstrap(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_info: %w", err)
	}

	var current int
	err := p.pool.QueryRow(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		current = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, collection := range Collections {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`, "col_"+collection)
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create collection %s: %w", collection, err)
		}
	}

	if current == 0 {
		_, err = p.pool.Exec(ctx, `INSERT INTO schema_info (version) VALUES ($1)`, schemaVersion)
	} else {
		_, err = p.pool.Exec(ctx, `UPDATE schema_info SET version = $1`, schemaVersion)
	}
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func (p *Postgres) table(collection string) (string, error) {
	if !knownCollection(collection) {
		return "", ErrUnknownCollection
	}
	return fmt.Sprintf("%q", "col_"+collection), nil
}

func (p *Postgres) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	table, err := p.table(collection)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, `SELECT id, doc FROM `+table)
	if err != nil {
		return nil, storageErr("get all", collection, err)
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, storageErr("scan", collection, err)
		}
		out[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all", collection, err)
	}
	return out, nil
}

func (p *Postgres) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	table, err := p.table(collection)
	if err != nil {
		return nil, false, err
	}
	var doc []byte
	err = p.pool.QueryRow(ctx, `SELECT doc FROM `+table+` WHERE id = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("get", collection, err)
	}
	return doc, true, nil
}

func (p *Postgres) Put(ctx context.Context, collection, key string, doc []byte) error {
	table, err := p.table(collection)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		key, doc)
	if err != nil {
		return storageErr("put", collection, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, key string) error {
	table, err := p.table(collection)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, key); err != nil {
		return storageErr("delete", collection, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

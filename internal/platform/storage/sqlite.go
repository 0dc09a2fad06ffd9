package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// schemaVersion gates collection-table creation. Bumping it and extending
// Collections adds new tables on next open; existing tables are untouched.
const schemaVersion = 1

// SQLite stores each collection as a table of (id, doc) JSON documents in a
// single local database file. It is the default driver: the closest server
// analogue of per-origin local structured storage.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "privacydesk.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_info: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
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
			doc BLOB NOT NULL
		)`, "col_"+collection)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create collection %s: %w", collection, err)
		}
	}

	if current == 0 {
		_, err = s.db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, schemaVersion)
	} else {
		_, err = s.db.ExecContext(ctx, `UPDATE schema_info SET version = ?`, schemaVersion)
	}
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func (s *SQLite) table(collection string) (string, error) {
	if !knownCollection(collection) {
		return "", ErrUnknownCollection
	}
	return fmt.Sprintf("%q", "col_"+collection), nil
}

func (s *SQLite) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	table, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, doc FROM `+table)
	if err != nil {
		return nil, storageErr("get all", collection, err)
	}
	defer func() { _ = rows.Close() }()

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

func (s *SQLite) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	table, err := s.table(collection)
	if err != nil {
		return nil, false, err
	}
	var doc []byte
	err = s.db.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("get", collection, err)
	}
	return doc, true, nil
}

func (s *SQLite) Put(ctx context.Context, collection, key string, doc []byte) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		key, doc)
	if err != nil {
		return storageErr("put", collection, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, collection, key string) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, key); err != nil {
		return storageErr("delete", collection, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

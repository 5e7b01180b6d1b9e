// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/jeranaias/instalite-tui/internal/util"
)

// SQLiteFileName is the database file used by SQLiteKV inside its directory.
const SQLiteFileName = "storage.db"

// SQLiteKV stores items for every origin in one SQLite database.
type SQLiteKV struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	origin string
	closed bool
}

// NewSQLiteKV opens (creating if needed) the database under dir.
func NewSQLiteKV(dir, origin string) (*SQLiteKV, error) {
	if dir == "" {
		return nil, errors.New("session: empty storage directory")
	}
	if err := os.MkdirAll(dir, util.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	path := filepath.Join(dir, SQLiteFileName)

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open storage database: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteKV{db: db, path: path, origin: origin}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS items (
			origin TEXT NOT NULL,
			key    TEXT NOT NULL,
			value  TEXT NOT NULL,
			PRIMARY KEY (origin, key)
		)`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteKV) Path() string {
	return s.path
}

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var v string
	err := s.db.QueryRow(`SELECT value FROM items WHERE origin = ? AND key = ?`, s.origin, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO items (origin, key, value) VALUES (?, ?, ?)
		ON CONFLICT (origin, key) DO UPDATE SET value = excluded.value`,
		s.origin, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.Exec(`DELETE FROM items WHERE origin = ? AND key = ?`, s.origin, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Watch reports changes to the database. With WAL enabled, commits from
// other processes touch the -wal file, so that is watched as well.
func (s *SQLiteKV) Watch(ctx context.Context) (<-chan struct{}, error) {
	main, err := watchFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	wal, err := watchFile(ctx, s.path+"-wal")
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for main != nil || wal != nil {
			var ok bool
			select {
			case _, ok = <-main:
				if !ok {
					main = nil
					continue
				}
			case _, ok = <-wal:
				if !ok {
					wal = nil
					continue
				}
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

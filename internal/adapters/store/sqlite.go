package store

import (
	"authbot/internal/core/domain"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the authorized and pending sets in two tables of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS authorized (
		identity INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS pending (
		identity INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT ''
	)`,
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)

	s, err := newSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", dbPath).Msg("opened sqlite identity store")

	return s, nil
}

func newSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("%w: create tables: %w", domain.ErrStoreCorrupt, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (map[domain.Identity]domain.IdentityMetadata,
	map[domain.Identity]domain.IdentityMetadata, error) {
	authorized, err := s.loadTable(ctx, "authorized")
	if err != nil {
		return nil, nil, err
	}

	pending, err := s.loadTable(ctx, "pending")
	if err != nil {
		return nil, nil, err
	}

	return authorized, pending, nil
}

func (s *SQLiteStore) loadTable(ctx context.Context, table string) (map[domain.Identity]domain.IdentityMetadata, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT identity, first_name, last_name FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", domain.ErrStoreCorrupt, table, err)
	}
	defer rows.Close()

	set := make(map[domain.Identity]domain.IdentityMetadata)
	for rows.Next() {
		var id int64
		var meta domain.IdentityMetadata
		if err := rows.Scan(&id, &meta.FirstName, &meta.LastName); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", domain.ErrStoreCorrupt, table, err)
		}
		set[domain.Identity(id)] = meta
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStoreCorrupt, table, err)
	}

	return set, nil
}

// Persist replaces both tables in a single transaction.
func (s *SQLiteStore) Persist(ctx context.Context, authorized, pending map[domain.Identity]domain.IdentityMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := replaceTable(ctx, tx, "authorized", authorized); err != nil {
		tx.Rollback()
		return err
	}

	if err := replaceTable(ctx, tx, "pending", pending); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func replaceTable(ctx context.Context, tx *sql.Tx, table string, set map[domain.Identity]domain.IdentityMetadata) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for id, meta := range set {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (identity, first_name, last_name) VALUES (?, ?, ?)",
			int64(id), meta.FirstName, meta.LastName)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

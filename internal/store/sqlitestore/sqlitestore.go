// Package sqlitestore persists shopping items in a single SQLite table.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single open connection, so writers are serialized by database/sql
//
// The schema is fixed at version 1. There is no migration path.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrUnsupportedSchema is returned when the file was written by a newer schema.
var ErrUnsupportedSchema = errors.New("unsupported schema version")

// Store is the SQLite-backed item store.
type Store struct {
	db *sql.DB
}

// Open creates or opens a database at path and applies the schema.
// Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite has one writer; a single connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListAll returns every item, newest first.
func (s *Store) ListAll(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, is_bought
		FROM shopping_items
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.IsBought); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Insert creates an unbought item and returns it with its assigned id.
// The name is stored as given.
func (s *Store) Insert(ctx context.Context, name string) (model.Item, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_items (name, is_bought) VALUES (?, 0)`, name)
	if err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return model.Item{ID: id, Name: name}, nil
}

// Update replaces the stored fields of item.ID.
// Returns store.ErrNotFound if no such row exists.
func (s *Store) Update(ctx context.Context, item model.Item) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shopping_items SET name = ?, is_bought = ? WHERE id = ?`,
		item.Name, item.IsBought, item.ID)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update item %d: %w", item.ID, store.ErrNotFound)
	}
	return nil
}

// Delete removes item.ID. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, item model.Item) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE id = ?`, item.ID); err != nil {
		return fmt.Errorf("delete item %d: %w", item.ID, err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: database is at %d, want %d", ErrUnsupportedSchema, version, schemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if version == 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

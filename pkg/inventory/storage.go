/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when the inventory is not in the storage.
var ErrNotFound = errors.New("inventory not found")

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Storage manages the inventories in a SQLite database.
type Storage struct {
	db *sql.DB
}

// Open opens the database at the given path and initializes the schema.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening inventory database failed, error: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing inventory database failed, error: %w", err)
	}

	return &Storage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS inventories (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			revision TEXT NOT NULL DEFAULT '',
			last_applied_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS inventory_entries (
			inventory TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			uri TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (inventory, kind, name)
		);
	`)
	return err
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// ApplyInventory creates or replaces the stored inventory.
func (s *Storage) ApplyInventory(ctx context.Context, i *Inventory) error {
	if i.Name == "" {
		return fmt.Errorf("inventory name is required")
	}
	if i.Revision == "" {
		i.Revision = uuid.NewString()
	}
	i.LastAppliedTime = time.Now().UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventories (name, source, revision, last_applied_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			revision = excluded.revision,
			last_applied_at = excluded.last_applied_at
	`, i.Name, i.Source, i.Revision, i.LastAppliedTime.Unix())
	if err != nil {
		return fmt.Errorf("storing inventory %s failed, error: %w", i.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_entries WHERE inventory = ?`, i.Name); err != nil {
		return fmt.Errorf("storing inventory %s failed, error: %w", i.Name, err)
	}

	for _, e := range i.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_entries (inventory, kind, name, uri)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(inventory, kind, name) DO UPDATE SET uri = excluded.uri
		`, i.Name, e.Kind, e.Name, e.URI)
		if err != nil {
			return fmt.Errorf("storing inventory entry %s failed, error: %w", e.ID(), err)
		}
	}

	return tx.Commit()
}

// GetInventory retrieves the entries from the storage for the given inventory name.
func (s *Storage) GetInventory(ctx context.Context, i *Inventory) error {
	var appliedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT source, revision, last_applied_at FROM inventories WHERE name = ?
	`, i.Name).Scan(&i.Source, &i.Revision, &appliedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, i.Name)
	}
	if err != nil {
		return fmt.Errorf("reading inventory %s failed, error: %w", i.Name, err)
	}
	i.LastAppliedTime = time.Unix(appliedAt, 0).UTC()

	entries, err := s.entries(ctx, i.Name)
	if err != nil {
		return err
	}
	i.Entries = entries
	return nil
}

func (s *Storage) entries(ctx context.Context, name string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, name, uri FROM inventory_entries WHERE inventory = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s failed, error: %w", name, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Kind, &e.Name, &e.URI); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	Sort(entries)
	return entries, nil
}

// DeleteInventory removes the inventory and its entries, a missing inventory is a no-op.
func (s *Storage) DeleteInventory(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_entries WHERE inventory = ?`, name); err != nil {
		return fmt.Errorf("deleting inventory %s failed, error: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventories WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting inventory %s failed, error: %w", name, err)
	}
	return tx.Commit()
}

// ListInventories returns all the stored inventories ordered by name.
func (s *Storage) ListInventories(ctx context.Context) ([]*Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, source, revision, last_applied_at FROM inventories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing inventories failed, error: %w", err)
	}

	list := make([]*Inventory, 0)
	for rows.Next() {
		var appliedAt int64
		i := NewInventory("")
		if err := rows.Scan(&i.Name, &i.Source, &i.Revision, &appliedAt); err != nil {
			rows.Close()
			return nil, err
		}
		i.LastAppliedTime = time.Unix(appliedAt, 0).UTC()
		list = append(list, i)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, i := range list {
		entries, err := s.entries(ctx, i.Name)
		if err != nil {
			return nil, err
		}
		i.Entries = entries
	}
	return list, nil
}

// GetInventoryStaleEntries returns the entries of the stored inventory
// that are missing from the given one, these are subject to pruning.
func (s *Storage) GetInventoryStaleEntries(ctx context.Context, i *Inventory) ([]Entry, error) {
	existing := NewInventory(i.Name)
	if err := s.GetInventory(ctx, existing); err != nil {
		if IsNotFound(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	return existing.Diff(i), nil
}

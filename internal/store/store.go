// Package store handles SQLite persistence of imported statistics.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/life-progress/internal/lifespan"
	"github.com/verte-zerg/life-progress/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for an imported statistics table.
type Store struct {
	db *sql.DB
}

// ImportInfo describes the most recent import.
type ImportInfo struct {
	Source     string
	ImportedAt time.Time
	Rows       int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			expectancy_all REAL NOT NULL,
			expectancy_male REAL NOT NULL,
			expectancy_female REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			row_count INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceCountries swaps the stored table for rows in one transaction and
// records where they came from.
func (s *Store) ReplaceCountries(ctx context.Context, source string, rows []lifespan.Row) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM countries`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO countries (position, name, expectancy_all, expectancy_male, expectancy_female)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, row := range rows {
		if _, err = stmt.ExecContext(ctx, i, row.Name, row.Info.All, row.Info.Male, row.Info.Female); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO imports (source, imported_at, row_count) VALUES (?, ?, ?)`,
		source, time.Now().UTC().Format(time.RFC3339Nano), len(rows)); err != nil {
		return err
	}
	return tx.Commit()
}

// Countries returns the stored rows in import order. An empty slice means
// nothing was imported.
func (s *Store) Countries(ctx context.Context) ([]lifespan.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, expectancy_all, expectancy_male, expectancy_female
		 FROM countries
		 ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []lifespan.Row
	for rows.Next() {
		var row lifespan.Row
		var info model.CountryInfo
		if err := rows.Scan(&row.Name, &info.All, &info.Male, &info.Female); err != nil {
			return nil, err
		}
		row.Info = info
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LastImport returns the most recent import, or false if none exists.
func (s *Store) LastImport(ctx context.Context) (ImportInfo, bool, error) {
	var info ImportInfo
	var importedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, imported_at, row_count FROM imports ORDER BY id DESC LIMIT 1`).
		Scan(&info.Source, &importedAt, &info.Rows)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportInfo{}, false, nil
	}
	if err != nil {
		return ImportInfo{}, false, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return ImportInfo{}, false, err
	}
	info.ImportedAt = parsed
	return info, true, nil
}

// Clear removes the imported table and its import history so the bundled
// dataset applies again.
func (s *Store) Clear(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM countries`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM imports`); err != nil {
		return err
	}
	return tx.Commit()
}

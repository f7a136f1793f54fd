// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skriv/kontrakt/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		name TEXT,
		number TEXT,
		date TEXT,
		subject TEXT,
		document TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_created_at ON contracts(created_at);
	CREATE INDEX IF NOT EXISTS idx_contracts_number ON contracts(number);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveContract inserts or replaces a contract record.
func (s *SQLiteStorage) SaveContract(ctx context.Context, rec *ContractRecord) error {
	docJSON, err := json.Marshal(rec.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	var number, date, subject string
	if rec.Document != nil {
		number = rec.Document.ContractState.Number
		date = rec.Document.ContractState.Date
		subject = rec.Document.ContractState.Subject
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO contracts (id, name, number, date, subject, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, number, date, subject, string(docJSON), rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetContract returns a contract record by ID.
func (s *SQLiteStorage) GetContract(ctx context.Context, id string) (*ContractRecord, error) {
	var rec ContractRecord
	var docJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, document, created_at, updated_at
		 FROM contracts WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &docJSON, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var doc models.ContractDocument
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	rec.Document = &doc

	return &rec, nil
}

// DeleteContract removes a contract by ID.
func (s *SQLiteStorage) DeleteContract(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListContracts returns contract summaries with offset and limit, newest first.
func (s *SQLiteStorage) ListContracts(ctx context.Context, offset, limit int) ([]*ContractSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, number, date, subject, created_at
		 FROM contracts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*ContractSummary
	for rows.Next() {
		var sum ContractSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Number, &sum.Date, &sum.Subject, &sum.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

// CountContracts returns the total number of stored contracts.
func (s *SQLiteStorage) CountContracts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Rhyred/smart-triage-system/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency under the HTTP server
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into a Record struct.
func scanRecord(s scanner) (*Record, error) {
	rec := &Record{}
	var riskLevel, status, method string
	var readingJSON, symptomsJSON, conditionsJSON string

	err := s.Scan(
		&rec.ID, &rec.RequestID, &readingJSON,
		&riskLevel, &status, &symptomsJSON, &conditionsJSON,
		&method, &rec.Confidence, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.RiskLevel = domain.RiskTier(riskLevel)
	rec.Status = domain.TriageStatus(status)
	rec.AnalysisMethod = domain.AnalysisMethod(method)

	if err := json.Unmarshal([]byte(readingJSON), &rec.Reading); err != nil {
		return nil, fmt.Errorf("failed to decode reading: %w", err)
	}
	if err := json.Unmarshal([]byte(symptomsJSON), &rec.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms: %w", err)
	}
	if err := json.Unmarshal([]byte(conditionsJSON), &rec.DetectedConditions); err != nil {
		return nil, fmt.Errorf("failed to decode conditions: %w", err)
	}
	return rec, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS triage_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		reading TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		status TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '[]',
		detected_conditions TEXT NOT NULL DEFAULT '[]',
		analysis_method TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_request_id ON triage_history(request_id);
	CREATE INDEX IF NOT EXISTS idx_history_risk_level ON triage_history(risk_level);
	CREATE INDEX IF NOT EXISTS idx_history_created_at ON triage_history(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// encodeRecord marshals the JSON-typed columns of a record.
func encodeRecord(record *Record) (reading, symptoms, conditions string, err error) {
	readingBytes, err := json.Marshal(record.Reading)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode reading: %w", err)
	}
	if record.Symptoms == nil {
		record.Symptoms = []string{}
	}
	symptomBytes, err := json.Marshal(record.Symptoms)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode symptoms: %w", err)
	}
	if record.DetectedConditions == nil {
		record.DetectedConditions = []string{}
	}
	conditionBytes, err := json.Marshal(record.DetectedConditions)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode conditions: %w", err)
	}
	return string(readingBytes), string(symptomBytes), string(conditionBytes), nil
}

// Save stores a new triage record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	readingJSON, symptomsJSON, conditionsJSON, err := encodeRecord(record)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO triage_history (
			request_id, reading, risk_level, status,
			symptoms, detected_conditions, analysis_method,
			confidence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.RequestID,
		readingJSON,
		string(record.RiskLevel),
		string(record.Status),
		symptomsJSON,
		conditionsJSON,
		string(record.AnalysisMethod),
		record.Confidence,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	record.ID = id

	return nil
}

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, request_id, reading, risk_level, status,
			symptoms, detected_conditions, analysis_method,
			confidence, created_at
		FROM triage_history
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns records newest-first with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, reading, risk_level, status,
			symptoms, detected_conditions, analysis_method,
			confidence, created_at
		FROM triage_history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triage_history").Scan(&count)
	return count, err
}

// Delete removes a record by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM triage_history WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all records to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Records:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

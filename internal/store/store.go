// Package store persists final per-document detections for auditing.
//
// Persistence is optional: runs work identically without it, and the CLI
// only wires the Postgres store when DATABASE_ENABLED is set. The schema is
// created lazily on first connect.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/scrubworks/piimap/internal/oracle"
)

// DetectionStore records the outcome of a pipeline run.
type DetectionStore interface {
	// SaveDetections stores one document's final records for a run.
	SaveDetections(ctx context.Context, runID, documentID string, records []oracle.Record) error

	// CountDetections returns the number of stored records for a run.
	CountDetections(ctx context.Context, runID string) (int, error)

	// Close closes the underlying connection.
	Close() error
}

// Compile-time checks.
var (
	_ DetectionStore = (*PostgresStore)(nil)
	_ DetectionStore = (*NoopStore)(nil)
)

// Config holds Postgres connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// PostgresStore is a DetectionStore backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens a connection, verifies it, and ensures the schema.
func NewPostgres(cfg Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: open connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	const query = `
	CREATE TABLE IF NOT EXISTS pii_detections (
		id SERIAL PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		document_id VARCHAR(255) NOT NULL,
		span_text VARCHAR(1000) NOT NULL,
		category VARCHAR(100) NOT NULL,
		identifier_type VARCHAR(50),
		justification TEXT,
		detected_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_pii_detections_run ON pii_detections(run_id);
	CREATE INDEX IF NOT EXISTS idx_pii_detections_document ON pii_detections(document_id);
	CREATE INDEX IF NOT EXISTS idx_pii_detections_category ON pii_detections(category);
	`
	_, err := db.Exec(query)
	return err
}

// SaveDetections inserts one row per record.
func (s *PostgresStore) SaveDetections(ctx context.Context, runID, documentID string, records []oracle.Record) error {
	const query = `
	INSERT INTO pii_detections (run_id, document_id, span_text, category, identifier_type, justification)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, r := range records {
		if _, err := s.db.ExecContext(ctx, query, runID, documentID, r.Text, r.Category, r.Type, r.Justification); err != nil {
			return fmt.Errorf("store: insert detection for %q: %w", documentID, err)
		}
	}
	return nil
}

// CountDetections returns the number of rows recorded for a run.
func (s *PostgresStore) CountDetections(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pii_detections WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count detections: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error { return s.db.Close() }

// NoopStore discards everything. Used when persistence is disabled.
type NoopStore struct{}

func (NoopStore) SaveDetections(context.Context, string, string, []oracle.Record) error {
	return nil
}

func (NoopStore) CountDetections(context.Context, string) (int, error) { return 0, nil }

func (NoopStore) Close() error { return nil }

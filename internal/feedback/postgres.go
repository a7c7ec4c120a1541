package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hirescope/internal/config"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS interview_feedback (
  id BIGSERIAL PRIMARY KEY,
  feedback_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS interview_feedback_kind_created_idx
  ON interview_feedback (kind, created_at DESC)`

// PostgresStore keeps feedback in the interview_feedback table.
type PostgresStore struct {
	DB *sql.DB
}

// OpenPostgresStore opens the database, checks it and optionally creates the
// table.
func OpenPostgresStore(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{DB: db}
	if cfg.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return store, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create feedback table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO interview_feedback (feedback_id, kind, payload, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query, rec.ID, string(rec.Kind), []byte(rec.Payload), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, kind Kind, limit int) ([]Record, error) {
	const query = `
SELECT feedback_id, kind, payload, created_at
FROM interview_feedback
WHERE ($1::text = '' OR kind = $1)
ORDER BY created_at DESC
LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, string(kind), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kindValue string
		var payload []byte
		if err := rows.Scan(&rec.ID, &kindValue, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		rec.Kind = Kind(kindValue)
		rec.Payload = payload
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}

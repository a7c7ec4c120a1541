// Package feedback stores interviewer and candidate feedback submitted
// through the API.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hirescope/internal/config"
	"hirescope/internal/errors"
)

// Kind says who submitted a feedback record.
type Kind string

const (
	KindInterviewer Kind = "interviewer"
	KindCandidate   Kind = "candidate"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 50

// ParseKind accepts the kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInterviewer:
		return KindInterviewer, nil
	case KindCandidate:
		return KindCandidate, nil
	}
	return "", errors.NewValidationError(errors.CodeInvalidRequest,
		fmt.Sprintf("invalid feedback kind %q (expected interviewer or candidate)", s), nil)
}

// Record is one stored submission. Payload is kept as the client sent it.
type Record struct {
	ID        string          `json:"feedback_id"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists feedback records. List returns the newest records first.
type Store interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context, kind Kind, limit int) ([]Record, error)
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.FeedbackConfig, logger *errors.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Debug("Using in-memory feedback store")
		return NewMemoryStore(), nil
	case "redis":
		store, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.NewStorageError(errors.CodeStorageFailed, "failed to open redis feedback store", err)
		}
		logger.Info("Using redis feedback store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.KeyPrefix)
		return store, nil
	case "postgres":
		store, err := OpenPostgresStore(ctx, cfg.Postgres)
		if err != nil {
			return nil, errors.NewStorageError(errors.CodeStorageFailed, "failed to open postgres feedback store", err)
		}
		logger.Info("Using postgres feedback store")
		return store, nil
	default:
		return nil, errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown feedback driver %q", cfg.Driver), nil)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"hirescope/internal/config"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hirescope.feedback")

// RedisStore appends JSON records to one list per kind.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) key(kind Kind) string {
	return listKey(s.prefix, kind)
}

func listKey(prefix string, kind Kind) string {
	if prefix == "" {
		return string(kind)
	}
	return prefix + ":" + string(kind)
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	key := s.key(rec.Kind)
	ctx, span := tracer.Start(ctx, "redis.RPush",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode feedback record: %w", err)
	}
	if err := s.rdb.RPush(ctx, key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	return nil
}

// List reads the newest limit records of kind. An empty kind reads both lists.
func (s *RedisStore) List(ctx context.Context, kind Kind, limit int) ([]Record, error) {
	if kind == "" {
		return s.listAll(ctx, limit)
	}

	limit = normalizeLimit(limit)
	key := s.key(kind)
	ctx, span := tracer.Start(ctx, "redis.LRange",
		trace.WithAttributes(attribute.String("redis.key", key), attribute.Int("redis.limit", limit)))
	defer span.End()

	raw, err := s.rdb.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return decodeRecords(raw)
}

func (s *RedisStore) listAll(ctx context.Context, limit int) ([]Record, error) {
	limit = normalizeLimit(limit)
	var all []Record
	for _, kind := range []Kind{KindInterviewer, KindCandidate} {
		records, err := s.List(ctx, kind, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	slices.SortStableFunc(all, func(a, b Record) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// decodeRecords turns an oldest-first LRANGE reply into newest-first records.
func decodeRecords(raw []string) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var rec Record
		if err := json.Unmarshal([]byte(raw[i]), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode feedback record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

package repository

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

// ErrSessionNotFound is returned when no snapshot is stored for a session, or it expired.
var ErrSessionNotFound = errors.New("session not found")

const (
	fieldSnapshot  = "snapshot"
	fieldUpdatedAt = "updated_at"
)

// SessionRepository stores the game of each live session. Entries expire
// after the session has been idle for the repository's TTL.
type SessionRepository interface {
	Save(ctx context.Context, id string, snap game.Snapshot) error
	FindByID(ctx context.Context, id string) (*game.State, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a new Redis-based SessionRepository.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save writes the snapshot and refreshes the session's expiry.
func (r *redisSessionRepository) Save(ctx context.Context, id string, snap game.Snapshot) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("session.history_length", len(snap.Moves)),
	))
	defer span.End()

	data, err := json.Marshal(snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal snapshot")
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := sessionKey(id)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fieldSnapshot, data)
	pipe.HSet(ctx, key, fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session in redis")
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// FindByID loads and validates the stored game.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*game.State, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGet(ctx, sessionKey(id), fieldSnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get session from redis")
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	state, err := decodeSnapshot(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stored session is invalid")
		return nil, err
	}
	return state, nil
}

// Delete removes the session.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func decodeSnapshot(data []byte) (*game.State, error) {
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	state, err := game.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return state, nil
}

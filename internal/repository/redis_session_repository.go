package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ctchen222/tictactoe/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository stores each session in a hash that expires ttl after its last
// write. A zero ttl keeps sessions until they are deleted.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

// Save replaces the stored session and refreshes its TTL.
func (r *redisSessionRepository) Save(ctx context.Context, id string, snap game.Snapshot) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	boardJSON, err := json.Marshal(snap.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}
	movesJSON, err := json.Marshal(snap.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	key := sessionKey(id)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, FieldBoard, boardJSON)
	pipe.HSet(ctx, key, FieldMoves, movesJSON)
	pipe.HSet(ctx, key, FieldCurrentTurn, string(snap.CurrentTurn))
	pipe.HSet(ctx, key, FieldStatus, string(snap.State.Status))
	pipe.HSet(ctx, key, FieldWinner, string(snap.State.Winner))
	pipe.HSet(ctx, key, FieldScoreX, snap.Scores.X)
	pipe.HSet(ctx, key, FieldScoreO, snap.Scores.O)
	pipe.HSet(ctx, key, FieldVsComputer, strconv.FormatBool(snap.VsComputer))
	pipe.HSet(ctx, key, FieldDifficulty, string(snap.Difficulty))
	pipe.HSet(ctx, key, FieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// Load reads a stored session. Missing or expired sessions return ErrSessionNotFound.
func (r *redisSessionRepository) Load(ctx context.Context, id string) (game.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Load", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return game.Snapshot{}, fmt.Errorf("failed to get session from redis: %w", err)
	}
	if len(data) == 0 {
		return game.Snapshot{}, ErrSessionNotFound
	}

	snap, err := decodeSession(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Corrupt session hash")
		return game.Snapshot{}, err
	}
	return snap, nil
}

// Delete drops a stored session. Deleting a missing session is not an error.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func decodeSession(data map[string]string) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data[FieldBoard]), &snap.Board); err != nil {
		return snap, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if err := json.Unmarshal([]byte(data[FieldMoves]), &snap.Moves); err != nil {
		return snap, fmt.Errorf("failed to unmarshal moves: %w", err)
	}

	var err error
	if snap.Scores.X, err = strconv.Atoi(data[FieldScoreX]); err != nil {
		return snap, fmt.Errorf("failed to parse score_x: %w", err)
	}
	if snap.Scores.O, err = strconv.Atoi(data[FieldScoreO]); err != nil {
		return snap, fmt.Errorf("failed to parse score_o: %w", err)
	}
	if snap.VsComputer, err = strconv.ParseBool(data[FieldVsComputer]); err != nil {
		return snap, fmt.Errorf("failed to parse vs_computer: %w", err)
	}

	snap.CurrentTurn = game.PlayerMark(data[FieldCurrentTurn])
	snap.State = game.State{
		Status: game.Status(data[FieldStatus]),
		Winner: game.PlayerMark(data[FieldWinner]),
	}
	snap.Active = snap.State.Status == game.StatusInProgress
	snap.Difficulty = game.Difficulty(data[FieldDifficulty])
	if snap.Moves == nil {
		snap.Moves = []int{}
	}
	return snap, nil
}

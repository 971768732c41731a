package repository

import (
	"context"
	"fmt"

	"ctchen222/tictactoe/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("api.repository")

// GameRepository defines the interface for game history operations.
type GameRepository interface {
	RecordGame(ctx context.Context, record *models.GameRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.GameRecord, error)
}

type sqliteGameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a new SQLite-based GameRepository.
func NewGameRepository(db *sqlx.DB) GameRepository {
	return &sqliteGameRepository{db: db}
}

// RecordGame inserts a finished game and sets record.ID.
func (r *sqliteGameRepository) RecordGame(ctx context.Context, record *models.GameRecord) error {
	ctx, span := tracer.Start(ctx, "GameRepository.RecordGame", trace.WithAttributes(
		attribute.String("session.id", record.SessionID),
		attribute.String("game.status", record.Status),
	))
	defer span.End()

	query := `INSERT INTO games (session_id, status, winner, vs_computer, difficulty, moves, finished_at)
		VALUES (:session_id, :status, :winner, :vs_computer, :difficulty, :moves, :finished_at)`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("failed to record game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read game id: %w", err)
	}
	record.ID = id
	return nil
}

// ListBySession returns the finished games of a session, oldest first.
func (r *sqliteGameRepository) ListBySession(ctx context.Context, sessionID string) ([]models.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.ListBySession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	games := []models.GameRecord{}
	query := `SELECT id, session_id, status, winner, vs_computer, difficulty, moves, finished_at
		FROM games WHERE session_id = ? ORDER BY id`
	if err := r.db.SelectContext(ctx, &games, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

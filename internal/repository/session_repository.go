package repository

import (
	"context"
	"errors"

	"ctchen222/tictactoe/internal/game"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.session")

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository mirrors live sessions so an evicted room can be resumed until its TTL
// runs out.
type SessionRepository interface {
	Save(ctx context.Context, id string, snap game.Snapshot) error
	Load(ctx context.Context, id string) (game.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

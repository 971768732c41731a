package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/room"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const reapInterval = time.Minute

var tracer = otel.Tracer("hub")

var ErrSessionNotFound = errors.New("session not found")

// Config holds the hub's collaborators and timing.
type Config struct {
	Calculator    room.MoveCalculator
	Sessions      repository.SessionRepository
	History       room.GameRecorder
	ComputerDelay time.Duration
	// IdleTimeout evicts rooms without subscribers that saw no command for this long.
	// Zero disables eviction.
	IdleTimeout time.Duration
}

// Hub manages all live rooms of this process.
type Hub struct {
	cfg   Config
	mu    sync.Mutex
	rooms map[string]*room.Room
	// ids serializes rehydration and deletion of one session.
	ids map[string]*idLock
}

// NewHub creates a new hub.
func NewHub(cfg Config) *Hub {
	if cfg.Sessions == nil {
		cfg.Sessions = repository.NewMemorySessionRepository(0)
	}
	return &Hub{
		cfg:   cfg,
		rooms: make(map[string]*room.Room),
		ids:   make(map[string]*idLock),
	}
}

// Run reaps idle rooms until ctx is cancelled, then closes every room.
func (h *Hub) Run(ctx context.Context) {
	reapTicker := time.NewTicker(reapInterval)
	defer reapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("Hub stopped")
			return
		case <-reapTicker.C:
			h.reapIdle(ctx, time.Now())
		}
	}
}

// Create starts a new session and its room.
func (h *Hub) Create(ctx context.Context, vsComputer bool, difficulty game.Difficulty) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.Bool("session.vs_computer", vsComputer),
		attribute.String("session.difficulty", string(difficulty)),
	))
	defer span.End()

	session := game.NewSession()
	session.VsComputer = vsComputer
	if difficulty != "" {
		if err := session.SetDifficulty(difficulty); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid difficulty")
			return nil, err
		}
	}

	id := uuid.New().String()
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.cfg.Sessions.Save(ctx, id, session.Snapshot()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to mirror new session")
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	r := h.startRoom(id, session)
	slog.InfoContext(ctx, "Session created", "session.id", id, "session.vs_computer", vsComputer, "session.difficulty", session.Difficulty)
	return r, nil
}

// Get returns the live room for id, resuming it from the session mirror when it was evicted.
// A room that is shutting down is waited for, so the mirror holds its last commit before
// it is read.
func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	if r, ok := h.running(id); ok {
		return r, nil
	}

	unlock := h.lockID(id)
	defer unlock()

	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if ok {
		select {
		case <-r.Closing():
			select {
			case <-r.Done():
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			return r, nil
		}
	}

	ctx, span := tracer.Start(ctx, "hub.Rehydrate", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	snap, err := h.cfg.Sessions.Load(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session, err := game.RestoreSession(snap)
	if err != nil {
		slog.ErrorContext(ctx, "Mirrored session is inconsistent", "session.id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Mirrored session is inconsistent")
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	r = h.startRoom(id, session)
	slog.InfoContext(ctx, "Session resumed from mirror", "session.id", id, "game.moves", len(snap.Moves))
	return r, nil
}

// Delete closes the session's room and removes its mirror.
func (h *Hub) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "hub.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	unlock := h.lockID(id)
	defer unlock()

	h.mu.Lock()
	r, live := h.rooms[id]
	h.mu.Unlock()

	if live {
		r.Close()
		<-r.Done()
		h.forget(r)
	} else if _, err := h.cfg.Sessions.Load(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := h.cfg.Sessions.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete mirror")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.InfoContext(ctx, "Session deleted", "session.id", id)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/repository"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/room"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -destination=mocks/mock_session_service.go -package=mocks . SessionService

var tracer = otel.Tracer("api.service")

// SessionService defines the interface for session-related business logic.
type SessionService interface {
	Create(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionResponse, error)
	Get(ctx context.Context, id string) (game.Snapshot, error)
	Move(ctx context.Context, id string, req *models.MoveRequest) (game.Snapshot, error)
	Reset(ctx context.Context, id string) (game.Snapshot, error)
	UpdateSettings(ctx context.Context, id string, req *models.SettingsRequest) (game.Snapshot, error)
	History(ctx context.Context, id string) ([]models.GameRecord, error)
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, id string, p *player.Player) error
	EngineMove(ctx context.Context, req *models.EngineMoveRequest) (int, error)
	ValidateToken(token string) (string, error)
}

type sessionService struct {
	hub        *hub.Hub
	games      repository.GameRepository
	tokens     *TokenIssuer
	calculator room.MoveCalculator
}

// NewSessionService creates a new SessionService.
func NewSessionService(h *hub.Hub, games repository.GameRepository, tokens *TokenIssuer, calculator room.MoveCalculator) SessionService {
	return &sessionService{
		hub:        h,
		games:      games,
		tokens:     tokens,
		calculator: calculator,
	}
}

// Create starts a session and issues its token.
func (s *sessionService) Create(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionResponse, error) {
	r, err := s.hub.Create(ctx, req.VsComputer, req.Difficulty)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(r.ID)
	if err != nil {
		return nil, err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SessionResponse{ID: r.ID, Token: token, Session: snap}, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (game.Snapshot, error) {
	return s.withRoom(ctx, id, func(r *room.Room) (game.Snapshot, error) {
		return r.Snapshot(ctx)
	})
}

// Move applies a human move. The mark is optional.
func (s *sessionService) Move(ctx context.Context, id string, req *models.MoveRequest) (game.Snapshot, error) {
	if req.Index == nil {
		return game.Snapshot{}, game.ErrOutOfRange
	}
	mark := game.None
	if req.Mark != "" {
		var err error
		if mark, err = game.ParseMark(string(req.Mark)); err != nil {
			return game.Snapshot{}, err
		}
	}
	return s.withRoom(ctx, id, func(r *room.Room) (game.Snapshot, error) {
		return r.Move(ctx, *req.Index, mark)
	})
}

func (s *sessionService) Reset(ctx context.Context, id string) (game.Snapshot, error) {
	return s.withRoom(ctx, id, func(r *room.Room) (game.Snapshot, error) {
		return r.Reset(ctx)
	})
}

func (s *sessionService) UpdateSettings(ctx context.Context, id string, req *models.SettingsRequest) (game.Snapshot, error) {
	settings := room.Settings{VsComputer: req.VsComputer}
	if req.Difficulty != "" {
		d, err := game.ParseDifficulty(string(req.Difficulty))
		if err != nil {
			return game.Snapshot{}, err
		}
		settings.Difficulty = d
	}
	return s.withRoom(ctx, id, func(r *room.Room) (game.Snapshot, error) {
		return r.UpdateSettings(ctx, settings)
	})
}

// History lists the finished games of a live or mirrored session.
func (s *sessionService) History(ctx context.Context, id string) ([]models.GameRecord, error) {
	if _, err := s.hub.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.games.ListBySession(ctx, id)
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	return s.hub.Delete(ctx, id)
}

// Join attaches a websocket player to the session's room.
func (s *sessionService) Join(ctx context.Context, id string, p *player.Player) error {
	_, err := s.withRoom(ctx, id, func(r *room.Room) (game.Snapshot, error) {
		return game.Snapshot{}, r.Join(ctx, p)
	})
	return err
}

// EngineMove picks a move on a caller-supplied board without touching any session.
func (s *sessionService) EngineMove(ctx context.Context, req *models.EngineMoveRequest) (int, error) {
	ctx, span := tracer.Start(ctx, "SessionService.EngineMove", trace.WithAttributes(
		attribute.String("bot.difficulty", string(req.Difficulty)),
	))
	defer span.End()

	board, err := game.BoardFromSlice(req.Board)
	if err != nil {
		return -1, err
	}
	if err := board.Validate(); err != nil {
		return -1, err
	}
	if board.HasLine(game.PlayerX) || board.HasLine(game.PlayerO) {
		return -1, fmt.Errorf("%w: board already has a winner", bot.ErrNoLegalMove)
	}

	difficulty := game.Hard
	if req.Difficulty != "" {
		if difficulty, err = game.ParseDifficulty(string(req.Difficulty)); err != nil {
			return -1, err
		}
	}
	mark := game.ComputerMark
	if req.Mark != "" {
		if mark, err = game.ParseMark(string(req.Mark)); err != nil {
			return -1, err
		}
	}

	return s.calculator.CalculateNextMove(ctx, board, mark, difficulty)
}

func (s *sessionService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

// withRoom runs fn against the session's room. A room evicted between lookup and command
// is resumed once more from the mirror.
func (s *sessionService) withRoom(ctx context.Context, id string, fn func(*room.Room) (game.Snapshot, error)) (game.Snapshot, error) {
	for attempt := 0; ; attempt++ {
		r, err := s.hub.Get(ctx, id)
		if err != nil {
			return game.Snapshot{}, err
		}
		snap, err := fn(r)
		if errors.Is(err, room.ErrRoomClosed) && attempt == 0 {
			slog.DebugContext(ctx, "room closed during command, retrying", "session.id", id)
			continue
		}
		return snap, err
	}
}

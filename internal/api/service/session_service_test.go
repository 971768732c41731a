package service

import (
	"context"
	"testing"
	"time"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/repository"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/hub"
	sessionrepo "ctchen222/tictactoe/internal/repository"

	"github.com/stretchr/testify/suite"
)

type SessionServiceSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	hub    *hub.Hub
	svc    SessionService
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}

func (s *SessionServiceSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	pool, err := db.Connect(s.ctx, "")
	s.Require().NoError(err)
	s.T().Cleanup(func() { pool.Close() })
	games := repository.NewGameRepository(pool)

	calc := bot.NewBotMoveCalculator(bot.NewSelector(&bot.FixedRandom{}))
	s.hub = hub.NewHub(hub.Config{
		Calculator:    calc,
		Sessions:      sessionrepo.NewMemorySessionRepository(time.Hour),
		History:       games,
		ComputerDelay: time.Millisecond,
	})
	go s.hub.Run(s.ctx)

	tokens, err := NewTokenIssuer("test-secret", time.Hour)
	s.Require().NoError(err)
	s.svc = NewSessionService(s.hub, games, tokens, calc)
}

func (s *SessionServiceSuite) TearDownTest() {
	s.cancel()
}

func idx(v int) *int { return &v }

func (s *SessionServiceSuite) TestCreateIssuesTokenForSession() {
	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{VsComputer: true, Difficulty: game.Medium})
	s.Require().NoError(err)
	s.NotEmpty(resp.ID)
	s.True(resp.Session.VsComputer)
	s.Equal(game.Medium, resp.Session.Difficulty)

	id, err := s.svc.ValidateToken(resp.Token)
	s.Require().NoError(err)
	s.Equal(resp.ID, id)
}

func (s *SessionServiceSuite) TestHotSeatGameAndHistory() {
	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{})
	s.Require().NoError(err)

	for _, i := range []int{0, 3, 1, 4} {
		_, err := s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(i)})
		s.Require().NoError(err)
	}
	snap, err := s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(2), Mark: "x"})
	s.Require().NoError(err)
	s.Equal(game.Won(game.PlayerX), snap.State)
	s.Equal([]int{0, 1, 2}, snap.WinningLine)

	_, err = s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(8)})
	s.ErrorIs(err, game.ErrGameOver)

	games, err := s.svc.History(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("X", games[0].Winner)

	snap, err = s.svc.Reset(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.True(snap.Active)
	s.Equal(game.Scores{X: 1}, snap.Scores)
}

func (s *SessionServiceSuite) TestMoveOutsideBoard() {
	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{})
	s.Require().NoError(err)

	for _, i := range []int{-1, 9} {
		_, err := s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(i)})
		s.ErrorIs(err, game.ErrOutOfRange)
		s.ErrorIs(err, game.ErrInvalidMove)
	}

	snap, err := s.svc.Get(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.Empty(snap.Moves)
}

func (s *SessionServiceSuite) TestComputerAnswers() {
	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{VsComputer: true, Difficulty: game.Hard})
	s.Require().NoError(err)

	_, err = s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(4)})
	s.Require().NoError(err)

	s.Eventually(func() bool {
		snap, err := s.svc.Get(s.ctx, resp.ID)
		return err == nil && len(snap.Moves) == 2 && snap.CurrentTurn == game.PlayerX
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SessionServiceSuite) TestSettings() {
	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{})
	s.Require().NoError(err)

	on := true
	snap, err := s.svc.UpdateSettings(s.ctx, resp.ID, &models.SettingsRequest{VsComputer: &on, Difficulty: "EASY"})
	s.Require().NoError(err)
	s.True(snap.VsComputer)
	s.Equal(game.Easy, snap.Difficulty)

	_, err = s.svc.UpdateSettings(s.ctx, resp.ID, &models.SettingsRequest{Difficulty: "brutal"})
	s.ErrorIs(err, game.ErrInvalidDifficulty)
}

func (s *SessionServiceSuite) TestUnknownAndDeletedSessions() {
	_, err := s.svc.Get(s.ctx, "missing")
	s.ErrorIs(err, hub.ErrSessionNotFound)
	_, err = s.svc.History(s.ctx, "missing")
	s.ErrorIs(err, hub.ErrSessionNotFound)

	resp, err := s.svc.Create(s.ctx, &models.CreateSessionRequest{})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, resp.ID))

	_, err = s.svc.Move(s.ctx, resp.ID, &models.MoveRequest{Index: idx(0)})
	s.ErrorIs(err, hub.ErrSessionNotFound)
}

func (s *SessionServiceSuite) TestEngineMove() {
	tests := []struct {
		name    string
		req     models.EngineMoveRequest
		want    int
		wantErr error
	}{
		{
			name: "O takes the immediate win",
			req:  models.EngineMoveRequest{Board: []game.PlayerMark{"X", "X", "", "O", "O", "", "", "", ""}},
			want: 5,
		},
		{
			name: "O completes the top row",
			req:  models.EngineMoveRequest{Board: []game.PlayerMark{"o", "o", "", "x", "x", "", "x", "", ""}},
			want: 2,
		},
		{
			name: "Empty board",
			req:  models.EngineMoveRequest{Board: make([]game.PlayerMark, 9), Mark: "X"},
			want: 4,
		},
		{
			name:    "Full board",
			req:     models.EngineMoveRequest{Board: []game.PlayerMark{"X", "O", "X", "X", "O", "O", "O", "X", "X"}},
			want:    -1,
			wantErr: bot.ErrNoLegalMove,
		},
		{
			name:    "Finished board",
			req:     models.EngineMoveRequest{Board: []game.PlayerMark{"X", "X", "X", "O", "O", "", "", "", ""}},
			want:    -1,
			wantErr: bot.ErrNoLegalMove,
		},
		{
			name:    "Unreachable board",
			req:     models.EngineMoveRequest{Board: []game.PlayerMark{"O", "O", "", "", "", "", "", "", ""}},
			want:    -1,
			wantErr: game.ErrInvalidBoard,
		},
		{
			name:    "Unknown difficulty",
			req:     models.EngineMoveRequest{Board: make([]game.PlayerMark, 9), Difficulty: "brutal"},
			want:    -1,
			wantErr: game.ErrInvalidDifficulty,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.svc.EngineMove(s.ctx, &tt.req)
			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
			} else {
				s.NoError(err)
			}
			s.Equal(tt.want, got)
		})
	}
}

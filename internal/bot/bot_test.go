package bot

import (
	"context"
	"errors"
	"testing"

	"ctchen222/tictactoe/internal/game"
)

func TestNewBotMoveCalculator(t *testing.T) {
	c := NewBotMoveCalculator(nil)
	if c.selector == nil {
		t.Fatal("expected a default selector")
	}
	if c.searchNodes == nil || c.decisions == nil {
		t.Error("expected instruments from the global meter provider")
	}
}

func TestBotMoveCalculator_CalculateNextMove(t *testing.T) {
	tests := []struct {
		name       string
		board      game.Board
		mark       game.PlayerMark
		difficulty game.Difficulty
		rng        *FixedRandom
		want       int
		wantErr    error
	}{
		{
			name:       "Hard takes the win",
			board:      game.Board{X, X, E, O, O, E, E, E, E},
			mark:       O,
			difficulty: game.Hard,
			rng:        &FixedRandom{},
			want:       5,
		},
		{
			name:       "Easy plays the drawn cell",
			board:      game.Board{X, X, E, O, O, E, E, E, E},
			mark:       O,
			difficulty: game.Easy,
			rng:        &FixedRandom{Ints: []int{4}},
			want:       8,
		},
		{
			name:       "Medium plays best on a high roll",
			board:      game.Board{O, O, E, X, X, E, X, E, E},
			mark:       O,
			difficulty: game.Medium,
			rng:        &FixedRandom{Floats: []float64{0.9}},
			want:       2,
		},
		{
			name:       "Full board",
			board:      game.Board{X, O, X, X, O, O, O, X, X},
			mark:       O,
			difficulty: game.Hard,
			rng:        &FixedRandom{},
			want:       -1,
			wantErr:    ErrNoLegalMove,
		},
		{
			name:       "Unknown mark",
			board:      game.Board{},
			mark:       E,
			difficulty: game.Hard,
			rng:        &FixedRandom{},
			want:       -1,
			wantErr:    game.ErrInvalidMark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBotMoveCalculator(NewSelector(tt.rng))

			got, err := c.CalculateNextMove(context.Background(), tt.board, tt.mark, tt.difficulty)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CalculateNextMove() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CalculateNextMove() = %d, want %d", got, tt.want)
			}
		})
	}
}

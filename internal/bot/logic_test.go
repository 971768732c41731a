package bot

import (
	"errors"
	"math/rand/v2"
	"testing"

	"ctchen222/tictactoe/internal/game"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		board game.Board
		mark  game.PlayerMark
		want  int
	}{
		{
			name:  "Empty board - take the center",
			board: game.Board{},
			mark:  O,
			want:  4,
		},
		{
			name: "O completes the middle row",
			board: game.Board{
				X, X, E,
				O, O, E,
				E, E, E,
			},
			mark: O,
			want: 5,
		},
		{
			name: "O completes the top row",
			board: game.Board{
				O, O, E,
				X, X, E,
				E, E, E,
			},
			mark: O,
			want: 2,
		},
		{
			name: "O blocks the only threat",
			board: game.Board{
				X, X, E,
				O, E, E,
				E, E, E,
			},
			mark: O,
			want: 2,
		},
		{
			name: "O answers a corner opening in the center",
			board: game.Board{
				X, E, E,
				E, E, E,
				E, E, E,
			},
			mark: O,
			want: 4,
		},
		{
			name: "Equal wins go to the lowest index",
			board: game.Board{
				O, O, E,
				O, X, X,
				E, X, X,
			},
			mark: O,
			want: 2,
		},
		{
			name: "X takes its own win",
			board: game.Board{
				X, E, O,
				E, X, O,
				E, E, E,
			},
			mark: X,
			want: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.board
			got, err := Search(tt.board, tt.mark)
			if err != nil {
				t.Fatalf("Search() unexpected error: %v", err)
			}
			if got.Index != tt.want {
				t.Errorf("Search() index = %d, want %d (score %d)", got.Index, tt.want, got.Score)
			}
			if tt.board != before {
				t.Errorf("Search() modified the caller's board")
			}
		})
	}
}

func TestSearchReportsNodes(t *testing.T) {
	res, err := Search(game.Board{X, X, E, O, O, E, E, E, E}, O)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if res.Nodes == 0 {
		t.Error("expected a non-empty search to visit positions")
	}
	if res.Score != 10 {
		t.Errorf("Search() score = %d, want 10 for an immediate win", res.Score)
	}

	res, _ = Search(game.Board{}, O)
	if res.Nodes != 0 {
		t.Errorf("expected the opening shortcut to skip the search, visited %d", res.Nodes)
	}
}

func TestSearchErrors(t *testing.T) {
	full := game.Board{
		X, O, X,
		X, O, O,
		O, X, X,
	}
	if _, err := Search(full, O); !errors.Is(err, ErrNoLegalMove) {
		t.Errorf("Search() on a full board error = %v, want ErrNoLegalMove", err)
	}
	if _, err := Search(game.Board{}, E); !errors.Is(err, game.ErrInvalidMark) {
		t.Errorf("Search() with no mark error = %v, want ErrInvalidMark", err)
	}
}

func TestMinimax(t *testing.T) {
	tests := []struct {
		name       string
		board      game.Board
		depth      int
		maximizing bool
		want       int
	}{
		{
			name:  "O line at the root",
			board: game.Board{O, O, O, X, X, E, X, E, E},
			depth: 0,
			want:  10,
		},
		{
			name:  "X line is discounted by depth",
			board: game.Board{X, X, X, O, O, E, E, E, E},
			depth: 2,
			want:  -8,
		},
		{
			name:  "Full board without a line",
			board: game.Board{X, O, X, X, O, O, O, X, X},
			depth: 5,
			want:  0,
		},
		{
			name:       "O to move wins next ply",
			board:      game.Board{X, X, E, O, O, E, E, E, E},
			depth:      0,
			maximizing: true,
			want:       9,
		},
		{
			name:  "X to move wins next ply",
			board: game.Board{X, X, E, O, O, E, E, E, E},
			depth: 0,
			want:  -9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Minimax(tt.board, tt.depth, tt.maximizing); got != tt.want {
				t.Errorf("Minimax() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelectorHardSelfPlayDraws(t *testing.T) {
	s := NewSelector(nil)
	g := game.NewGame()

	for g.Active() {
		idx, err := s.SelectMoveFor(g.Board, g.CurrentTurn, game.Hard)
		if err != nil {
			t.Fatalf("SelectMoveFor() unexpected error: %v", err)
		}
		if _, err := g.ApplyMove(idx, g.CurrentTurn); err != nil {
			t.Fatalf("ApplyMove(%d) failed: %v", idx, err)
		}
	}

	if g.State != game.Draw() {
		t.Errorf("expected perfect play to draw, got %v on %s", g.State, g.Board)
	}
	if len(g.Moves) != 9 || !g.Board.IsFull() {
		t.Errorf("expected all nine cells to be played, got moves %v", g.Moves)
	}
}

func TestSelectorEasyPicksFromEmptyCells(t *testing.T) {
	board := game.Board{X, E, E, E, E, E, E, E, E}
	s := NewSelector(&FixedRandom{Ints: []int{2, 7}})

	got, err := s.SelectMove(board, game.Easy)
	if err != nil {
		t.Fatalf("SelectMove() unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("SelectMove() = %d, want the third empty cell 3", got)
	}

	got, _ = s.SelectMove(board, game.Easy)
	if got != 8 {
		t.Errorf("SelectMove() = %d, want the eighth empty cell 8", got)
	}
}

func TestSelectorMedium(t *testing.T) {
	board := game.Board{X, X, E, O, O, E, E, E, E}

	tests := []struct {
		name       string
		roll       float64
		want       int
		wantRandom bool
	}{
		{name: "Roll below the mistake rate plays randomly", roll: 0.39, want: 2, wantRandom: true},
		{name: "Roll at the mistake rate plays best", roll: 0.4, want: 5},
		{name: "High roll plays best", roll: 0.99, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(&FixedRandom{Floats: []float64{tt.roll}, Ints: []int{0}})
			got, err := s.Decide(board, O, game.Medium)
			if err != nil {
				t.Fatalf("Decide() unexpected error: %v", err)
			}
			if got.Index != tt.want || got.Random != tt.wantRandom {
				t.Errorf("Decide() = %+v, want index %d random %v", got, tt.want, tt.wantRandom)
			}
		})
	}
}

func TestSelectorMediumMistakeRate(t *testing.T) {
	s := NewSelector(rand.New(rand.NewPCG(1, 2)))
	board := game.Board{X, X, E, O, O, E, E, E, E}

	const rounds = 2000
	random := 0
	for range rounds {
		d, err := s.Decide(board, O, game.Medium)
		if err != nil {
			t.Fatalf("Decide() unexpected error: %v", err)
		}
		if board[d.Index] != E {
			t.Fatalf("Decide() chose occupied cell %d", d.Index)
		}
		if d.Random {
			random++
		}
	}

	if random < 700 || random > 900 {
		t.Errorf("expected about 40%% random moves, got %d of %d", random, rounds)
	}
}

func TestSelectorErrors(t *testing.T) {
	full := game.Board{X, O, X, X, O, O, O, X, X}
	s := NewSelector(&FixedRandom{})

	for _, d := range game.Difficulties() {
		if _, err := s.SelectMove(full, d); !errors.Is(err, ErrNoLegalMove) {
			t.Errorf("SelectMove(%s) on a full board error = %v, want ErrNoLegalMove", d, err)
		}
	}
	if _, err := s.SelectMoveFor(game.Board{}, "Z", game.Hard); !errors.Is(err, game.ErrInvalidMark) {
		t.Errorf("SelectMoveFor() with an unknown mark error = %v, want ErrInvalidMark", err)
	}
}

func TestSelectorUnknownDifficultyPlaysHard(t *testing.T) {
	s := NewSelector(&FixedRandom{Ints: []int{0}})
	got, err := s.SelectMove(game.Board{X, X, E, O, O, E, E, E, E}, "nightmare")
	if err != nil {
		t.Fatalf("SelectMove() unexpected error: %v", err)
	}
	if got != 5 {
		t.Errorf("SelectMove() = %d, want 5", got)
	}
}

func TestBestMove(t *testing.T) {
	got, err := BestMove(game.Board{O, O, E, X, X, E, E, E, E})
	if err != nil {
		t.Fatalf("BestMove() unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("BestMove() = %d, want 2", got)
	}
}

package bot

import (
	"errors"
	"math"

	"ctchen222/tictactoe/internal/game"
)

// mistakeRate is the chance that medium plays a random cell instead of the best one.
const mistakeRate = 0.4

// centerCell is played on an empty board without searching.
const centerCell = 4

var ErrNoLegalMove = errors.New("no legal move")

// SearchResult is the outcome of one optimal search.
type SearchResult struct {
	Index int
	Score int
	// Nodes counts the positions visited by minimax.
	Nodes int
}

// Selector picks the computer's move according to a difficulty policy.
type Selector struct {
	rng Random
}

// NewSelector creates a Selector. A nil rng falls back to math/rand/v2.
func NewSelector(rng Random) *Selector {
	if rng == nil {
		rng = NewRandom()
	}
	return &Selector{rng: rng}
}

// SelectMove returns the cell the computer (O) plays on board.
func (s *Selector) SelectMove(board game.Board, difficulty game.Difficulty) (int, error) {
	return s.SelectMoveFor(board, game.ComputerMark, difficulty)
}

// SelectMoveFor returns the cell mark plays on board. Unknown difficulties play hard.
func (s *Selector) SelectMoveFor(board game.Board, mark game.PlayerMark, difficulty game.Difficulty) (int, error) {
	d, err := s.Decide(board, mark, difficulty)
	return d.Index, err
}

// Decision describes how a move was chosen.
type Decision struct {
	Index int
	// Random is set when the move was drawn instead of searched.
	Random bool
	// Nodes counts the positions the search visited; zero for random moves.
	Nodes int
}

// Decide applies the difficulty policy for mark on board.
func (s *Selector) Decide(board game.Board, mark game.PlayerMark, difficulty game.Difficulty) (Decision, error) {
	if !mark.Valid() {
		return Decision{Index: -1}, game.ErrInvalidMark
	}
	if board.IsFull() {
		return Decision{Index: -1}, ErrNoLegalMove
	}

	switch difficulty {
	case game.Easy:
		return s.randomMove(board)
	case game.Medium:
		if s.rng.Float64() < mistakeRate {
			return s.randomMove(board)
		}
	}

	res, err := Search(board, mark)
	if err != nil {
		return Decision{Index: -1}, err
	}
	return Decision{Index: res.Index, Nodes: res.Nodes}, nil
}

// randomMove picks uniformly among the empty cells.
func (s *Selector) randomMove(board game.Board) (Decision, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return Decision{Index: -1}, ErrNoLegalMove
	}
	return Decision{Index: cells[s.rng.IntN(len(cells))], Random: true}, nil
}

// BestMove returns the optimal cell for O.
func BestMove(board game.Board) (int, error) {
	res, err := Search(board, game.ComputerMark)
	return res.Index, err
}

// Search runs the exhaustive minimax for mark. Ties go to the lowest index.
func Search(board game.Board, mark game.PlayerMark) (SearchResult, error) {
	if !mark.Valid() {
		return SearchResult{Index: -1}, game.ErrInvalidMark
	}
	if board.IsFull() {
		return SearchResult{Index: -1}, ErrNoLegalMove
	}
	if board.IsEmpty() {
		return SearchResult{Index: centerCell}, nil
	}

	m := minimaxer{self: mark, opponent: mark.Opponent()}
	best := SearchResult{Index: -1, Score: math.MinInt}
	for i := range board {
		if board[i] != game.None {
			continue
		}
		board[i] = mark
		score := m.score(&board, 0, false)
		board[i] = game.None
		if score > best.Score {
			best.Score = score
			best.Index = i
		}
	}
	best.Nodes = m.nodes
	return best, nil
}

// Minimax scores board from O's point of view. maximizing is true when O places next.
func Minimax(board game.Board, depth int, maximizing bool) int {
	m := minimaxer{self: game.PlayerO, opponent: game.PlayerX}
	return m.score(&board, depth, maximizing)
}

type minimaxer struct {
	self     game.PlayerMark
	opponent game.PlayerMark
	nodes    int
}

// score places marks on board in place and restores every cell before returning.
func (m *minimaxer) score(board *game.Board, depth int, maximizing bool) int {
	m.nodes++

	if board.HasLine(m.self) {
		return 10 - depth
	}
	if board.HasLine(m.opponent) {
		return depth - 10
	}
	if board.IsFull() {
		return 0
	}

	if maximizing {
		best := math.MinInt
		for i := range board {
			if board[i] != game.None {
				continue
			}
			board[i] = m.self
			best = max(best, m.score(board, depth+1, false))
			board[i] = game.None
		}
		return best
	}

	best := math.MaxInt
	for i := range board {
		if board[i] != game.None {
			continue
		}
		board[i] = m.opponent
		best = min(best, m.score(board, depth+1, true))
		board[i] = game.None
	}
	return best
}

package game

import (
	"errors"
	"fmt"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Status is the phase of a single game.
type Status string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game statuses
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 8
)

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrOutOfRange   = fmt.Errorf("%w: cell index out of range", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell already occupied", ErrInvalidMove)
	ErrGameOver     = fmt.Errorf("%w: game already finished", ErrInvalidMove)
	ErrNotYourTurn  = fmt.Errorf("%w: not player's turn", ErrInvalidMove)

	ErrInvalidMark  = errors.New("invalid player mark")
	ErrInvalidBoard = errors.New("invalid board")
)

// State is the outcome of a game so far. Winner is only set when Status is StatusWon.
type State struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// InProgress, Won and Draw build the three possible states.
func InProgress() State           { return State{Status: StatusInProgress} }
func Won(player PlayerMark) State { return State{Status: StatusWon, Winner: player} }
func Draw() State                 { return State{Status: StatusDraw} }

// Terminal reports whether no further moves can be played.
func (s State) Terminal() bool {
	return s.Status != StatusInProgress
}

func (s State) String() string {
	if s.Status == StatusWon {
		return fmt.Sprintf("won(%s)", s.Winner)
	}
	return string(s.Status)
}

// Game is a single game of tic-tac-toe. X always moves first.
type Game struct {
	Board       Board
	CurrentTurn PlayerMark
	State       State
	// Moves holds the played cell indices in order.
	Moves []int
}

func NewGame() *Game {
	return &Game{
		CurrentTurn: PlayerX,
		State:       InProgress(),
	}
}

// ApplyMove places player's mark on index. On any violation the game is left untouched
// and an error wrapping ErrInvalidMove is returned.
func (g *Game) ApplyMove(index int, player PlayerMark) (State, error) {
	if g.State.Terminal() {
		return g.State, ErrGameOver
	}
	if index < BorderMin || index > BorderMax {
		return g.State, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	if player != g.CurrentTurn {
		return g.State, ErrNotYourTurn
	}
	if g.Board[index] != None {
		return g.State, fmt.Errorf("%w: %d", ErrCellOccupied, index)
	}

	next := g.Board
	next[index] = player
	state, err := EvaluateTermination(next, player)
	if err != nil {
		return g.State, err
	}

	g.Board = next
	g.Moves = append(g.Moves, index)
	g.State = state
	if !state.Terminal() {
		g.CurrentTurn = player.Opponent()
	}
	return state, nil
}

// EvaluateTermination decides the state of b right after mover played. Only the mover can
// have completed a line; a board where the other mark owns a line is rejected.
func EvaluateTermination(b Board, mover PlayerMark) (State, error) {
	if !mover.Valid() {
		return State{}, ErrInvalidMark
	}
	if b.HasLine(mover.Opponent()) {
		return State{}, fmt.Errorf("%w: %s owns a line after %s moved", ErrInvalidBoard, mover.Opponent(), mover)
	}

	// A move can fill the last cell and win at once, so the win check goes first.
	if b.HasLine(mover) {
		return Won(mover), nil
	}
	if b.IsFull() {
		return Draw(), nil
	}
	return InProgress(), nil
}

// Reset clears the board and gives the first move back to X.
func (g *Game) Reset() {
	g.Board = Board{}
	g.CurrentTurn = PlayerX
	g.State = InProgress()
	g.Moves = nil
}

// Active reports whether the game still accepts moves.
func (g *Game) Active() bool {
	return !g.State.Terminal()
}

// WinningLine returns the line that decided the game, if any.
func (g *Game) WinningLine() ([3]int, bool) {
	if g.State.Status != StatusWon {
		return [3]int{}, false
	}
	return g.Board.LineOf(g.State.Winner)
}

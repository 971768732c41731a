package game

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty selects the policy the computer plays with.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"

	// ComputerMark is the mark the computer plays against a human.
	ComputerMark = PlayerO
	// HumanMark is the mark of the human when playing against the computer.
	HumanMark = PlayerX
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// ParseDifficulty accepts easy, medium or hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Difficulties lists every policy from weakest to strongest.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Scores is the win tally of one session. Draws are not counted.
type Scores struct {
	X int `json:"x"`
	O int `json:"o"`
}

// Session is a continuous sequence of games sharing one score tally.
type Session struct {
	Game       *Game
	Scores     Scores
	VsComputer bool
	Difficulty Difficulty
}

// NewSession starts a hot-seat session on hard difficulty.
func NewSession() *Session {
	return &Session{
		Game:       NewGame(),
		Difficulty: Hard,
	}
}

// ApplyMove applies the move to the current game and tallies the result when the move
// ends it.
func (s *Session) ApplyMove(index int, player PlayerMark) (State, error) {
	state, err := s.Game.ApplyMove(index, player)
	if err != nil {
		return state, err
	}
	if state.Terminal() {
		s.RecordResult(state)
	}
	return state, nil
}

// RecordResult adds a win to the winner's tally.
func (s *Session) RecordResult(state State) {
	if state.Status != StatusWon {
		return
	}
	switch state.Winner {
	case PlayerX:
		s.Scores.X++
	case PlayerO:
		s.Scores.O++
	}
}

// Reset starts a new game. The tally is kept.
func (s *Session) Reset() {
	s.Game.Reset()
}

// SetVsComputer switches between hot-seat and computer play and restarts the game.
func (s *Session) SetVsComputer(on bool) {
	s.VsComputer = on
	s.Reset()
}

// SetDifficulty changes the computer policy and restarts the game.
func (s *Session) SetDifficulty(d Difficulty) error {
	parsed, err := ParseDifficulty(string(d))
	if err != nil {
		return err
	}
	s.Difficulty = parsed
	s.Reset()
	return nil
}

// ComputerToMove reports whether the computer owes the next move.
func (s *Session) ComputerToMove() bool {
	return s.VsComputer && s.Game.Active() && s.Game.CurrentTurn == ComputerMark
}

// HumanMark returns the mark a human plays next: always X against the computer,
// otherwise whoever's turn it is.
func (s *Session) HumanMark() PlayerMark {
	if s.VsComputer {
		return HumanMark
	}
	return s.Game.CurrentTurn
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	Board       Board      `json:"board"`
	CurrentTurn PlayerMark `json:"current_turn"`
	State       State      `json:"state"`
	Active      bool       `json:"active"`
	WinningLine []int      `json:"winning_line,omitempty"`
	Moves       []int      `json:"moves"`
	Scores      Scores     `json:"scores"`
	VsComputer  bool       `json:"vs_computer"`
	Difficulty  Difficulty `json:"difficulty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Board:       s.Game.Board,
		CurrentTurn: s.Game.CurrentTurn,
		State:       s.Game.State,
		Active:      s.Game.Active(),
		Moves:       append([]int(nil), s.Game.Moves...),
		Scores:      s.Scores,
		VsComputer:  s.VsComputer,
		Difficulty:  s.Difficulty,
	}
	if line, ok := s.Game.WinningLine(); ok {
		snap.WinningLine = line[:]
	}
	if snap.Moves == nil {
		snap.Moves = []int{}
	}
	return snap
}

// RestoreSession rebuilds a session from a snapshot by replaying its moves, so a corrupt
// snapshot can never yield a board unreachable by legal play.
func RestoreSession(snap Snapshot) (*Session, error) {
	d, err := ParseDifficulty(string(snap.Difficulty))
	if err != nil {
		return nil, err
	}
	if snap.Scores.X < 0 || snap.Scores.O < 0 {
		return nil, fmt.Errorf("%w: negative score", ErrInvalidBoard)
	}

	g := NewGame()
	for _, index := range snap.Moves {
		if _, err := g.ApplyMove(index, g.CurrentTurn); err != nil {
			return nil, fmt.Errorf("replaying move %d: %w", index, err)
		}
	}
	if g.Board != snap.Board {
		return nil, fmt.Errorf("%w: board does not match move list", ErrInvalidBoard)
	}

	return &Session{
		Game:       g,
		Scores:     snap.Scores,
		VsComputer: snap.VsComputer,
		Difficulty: d,
	}, nil
}

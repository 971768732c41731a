package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playAll(t *testing.T, s *Session, indices ...int) {
	t.Helper()
	for _, idx := range indices {
		_, err := s.ApplyMove(idx, s.Game.CurrentTurn)
		require.NoError(t, err, "move %d", idx)
	}
}

func TestSession_RecordsWinsNotDraws(t *testing.T) {
	s := NewSession()

	// X wins on the top row.
	playAll(t, s, 0, 3, 1, 4, 2)
	assert.Equal(t, Scores{X: 1}, s.Scores)

	s.Reset()
	// X O X / X O O / O X X
	playAll(t, s, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	require.Equal(t, Draw(), s.Game.State)
	assert.Equal(t, Scores{X: 1}, s.Scores)
}

func TestSession_ResetKeepsScores(t *testing.T) {
	s := NewSession()
	playAll(t, s, 3, 0, 4, 1, 8, 2)
	require.Equal(t, Won(O), s.Game.State)

	s.Reset()

	assert.True(t, s.Game.Active())
	assert.Equal(t, Board{}, s.Game.Board)
	assert.Equal(t, PlayerX, s.Game.CurrentTurn)
	assert.Equal(t, Scores{O: 1}, s.Scores)
}

func TestSession_InactiveRejectsMoves(t *testing.T) {
	s := NewSession()
	playAll(t, s, 0, 3, 1, 4, 2)
	before := s.Game.Board

	_, err := s.ApplyMove(8, PlayerO)

	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, before, s.Game.Board)
	assert.Equal(t, Scores{X: 1}, s.Scores)
}

func TestSession_SettingsRestartGame(t *testing.T) {
	s := NewSession()
	assert.Equal(t, Hard, s.Difficulty)
	assert.False(t, s.VsComputer)

	playAll(t, s, 4)
	s.SetVsComputer(true)
	assert.True(t, s.Game.Board.IsEmpty())
	assert.Equal(t, HumanMark, s.HumanMark())

	playAll(t, s, 4)
	assert.True(t, s.ComputerToMove())

	require.NoError(t, s.SetDifficulty(Easy))
	assert.True(t, s.Game.Board.IsEmpty())
	assert.False(t, s.ComputerToMove())

	assert.ErrorIs(t, s.SetDifficulty("impossible"), ErrInvalidDifficulty)
	assert.Equal(t, Easy, s.Difficulty)
}

func TestSession_SetDifficultyStoresCanonicalName(t *testing.T) {
	tests := []struct {
		in   Difficulty
		want Difficulty
	}{
		{in: "EASY", want: Easy},
		{in: " Medium", want: Medium},
		{in: "hard", want: Hard},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			s := NewSession()
			require.NoError(t, s.SetDifficulty(tt.in))
			assert.Equal(t, tt.want, s.Difficulty)
			assert.Equal(t, tt.want, s.Snapshot().Difficulty)
		})
	}
}

func TestSession_HotSeatHumanMarkFollowsTurn(t *testing.T) {
	s := NewSession()
	assert.Equal(t, PlayerX, s.HumanMark())
	playAll(t, s, 0)
	assert.Equal(t, PlayerO, s.HumanMark())
	assert.False(t, s.ComputerToMove())
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	s := NewSession()
	s.VsComputer = true
	s.Scores = Scores{X: 2, O: 5}
	playAll(t, s, 0, 4, 8)

	snap := s.Snapshot()
	assert.Equal(t, []int{0, 4, 8}, snap.Moves)
	assert.True(t, snap.Active)
	assert.Empty(t, snap.WinningLine)

	restored, err := RestoreSession(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
}

func TestSession_SnapshotCarriesWinningLine(t *testing.T) {
	s := NewSession()
	playAll(t, s, 2, 0, 4, 1, 6)

	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Equal(t, Won(PlayerX), snap.State)
	assert.Equal(t, []int{2, 4, 6}, snap.WinningLine)
}

func TestRestoreSession_RejectsInconsistentSnapshots(t *testing.T) {
	s := NewSession()
	playAll(t, s, 0, 4)
	good := s.Snapshot()

	tampered := good
	tampered.Board[8] = PlayerO
	_, err := RestoreSession(tampered)
	assert.ErrorIs(t, err, ErrInvalidBoard)

	replayed := good
	replayed.Moves = []int{0, 0}
	_, err = RestoreSession(replayed)
	assert.ErrorIs(t, err, ErrCellOccupied)

	badDifficulty := good
	badDifficulty.Difficulty = "brutal"
	_, err = RestoreSession(badDifficulty)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestParseDifficultyAndMark(t *testing.T) {
	d, err := ParseDifficulty(" Medium ")
	require.NoError(t, err)
	assert.Equal(t, Medium, d)

	m, err := ParseMark("o")
	require.NoError(t, err)
	assert.Equal(t, PlayerO, m)

	_, err = ParseMark("-")
	assert.ErrorIs(t, err, ErrInvalidMark)
	assert.Equal(t, None, None.Opponent())
}

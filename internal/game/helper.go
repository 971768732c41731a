package game

import "strings"

// Valid reports whether m is X or O.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent returns the other mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// ParseMark accepts "x", "X", "o" or "O".
func ParseMark(s string) (PlayerMark, error) {
	m := PlayerMark(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return None, ErrInvalidMark
	}
	return m, nil
}

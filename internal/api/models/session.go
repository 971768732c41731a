package models

import (
	"ctchen222/tictactoe/internal/game"
)

// CreateSessionRequest defines the body of a session creation request.
type CreateSessionRequest struct {
	VsComputer bool            `json:"vs_computer"`
	Difficulty game.Difficulty `json:"difficulty" binding:"omitempty,difficulty"`
}

// MoveRequest places a mark. Mark defaults to X against the computer and to the current
// player in hot-seat play.
type MoveRequest struct {
	Index *int            `json:"index" binding:"required"`
	Mark  game.PlayerMark `json:"mark" binding:"omitempty,mark"`
}

// SettingsRequest changes the mode or difficulty. Omitted fields are left unchanged.
type SettingsRequest struct {
	VsComputer *bool           `json:"vs_computer"`
	Difficulty game.Difficulty `json:"difficulty" binding:"omitempty,difficulty"`
}

// EngineMoveRequest asks for a move on an arbitrary board without a session.
type EngineMoveRequest struct {
	Board      []game.PlayerMark `json:"board" binding:"required,len=9,dive,omitempty,mark"`
	Difficulty game.Difficulty   `json:"difficulty" binding:"omitempty,difficulty"`
	Mark       game.PlayerMark   `json:"mark" binding:"omitempty,mark"`
}

// EngineMoveResponse is the chosen cell.
type EngineMoveResponse struct {
	Index int `json:"index"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID      string        `json:"id"`
	Token   string        `json:"token"`
	Session game.Snapshot `json:"session"`
}

// GameList is the history of one session.
type GameList struct {
	Games []GameRecord `json:"games"`
}

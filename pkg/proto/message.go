package proto

import "ctchen222/tictactoe/internal/game"

// Client frame types.
const (
	TypeMove     = "move"
	TypeReset    = "reset"
	TypeSettings = "settings"
	TypeSync     = "sync"
)

// Server frame types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string          `json:"type" validate:"required,oneof=move reset settings sync"`
	Index      *int            `json:"index,omitempty" validate:"required_if=Type move"`
	Mark       game.PlayerMark `json:"mark,omitempty" validate:"omitempty,mark"`
	VsComputer *bool           `json:"vs_computer,omitempty"`
	Difficulty game.Difficulty `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string         `json:"type" validate:"required"`
	Reason string         `json:"reason,omitempty"`
	State  *game.Snapshot `json:"state,omitempty"`
}

// StateMessage wraps a snapshot in a state frame.
func StateMessage(snap game.Snapshot) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeState, State: &snap}
}

// ErrorMessage reports a rejected frame to its sender.
func ErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}

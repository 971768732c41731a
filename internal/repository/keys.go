package repository

import "fmt"

const keyPrefix = "tictactoe"

// Hash fields of a mirrored session.
const (
	FieldBoard       = "board"
	FieldMoves       = "moves"
	FieldCurrentTurn = "current_turn"
	FieldStatus      = "status"
	FieldWinner      = "winner"
	FieldScoreX      = "score_x"
	FieldScoreO      = "score_o"
	FieldVsComputer  = "vs_computer"
	FieldDifficulty  = "difficulty"
	FieldUpdatedAt   = "updated_at"
)

func sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

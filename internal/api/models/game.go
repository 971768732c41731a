package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GameRecord is one finished game in the history table.
type GameRecord struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Status     string    `db:"status" json:"status"`
	Winner     string    `db:"winner" json:"winner,omitempty"`
	VsComputer bool      `db:"vs_computer" json:"vs_computer"`
	Difficulty string    `db:"difficulty" json:"difficulty"`
	Moves      MoveList  `db:"moves" json:"moves"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}

// MoveList is stored as a JSON array.
type MoveList []int

func (m MoveList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MoveList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*m = MoveList{}
		return nil
	default:
		return fmt.Errorf("unsupported move list type %T", src)
	}
	return json.Unmarshal(raw, (*[]int)(m))
}

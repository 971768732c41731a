package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/tictactoe/internal/game"
)

// renderBoard prints the grid. Empty cells show their index.
func renderBoard(w io.Writer, b game.Board) {
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if b[i] == game.None {
				cells[col] = strconv.Itoa(i)
			} else {
				cells[col] = string(b[i])
			}
		}
		fmt.Fprintf(w, " %s\n", strings.Join(cells, " | "))
		if row < 2 {
			fmt.Fprintln(w, "---+---+---")
		}
	}
}

func describeResult(state game.State) string {
	if state.Status == game.StatusDraw {
		return "Draw!"
	}
	return fmt.Sprintf("%s wins!", state.Winner)
}

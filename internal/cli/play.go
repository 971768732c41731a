package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		difficulty string
		hotSeat    bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play in the terminal. Enter a cell index (0-8) to move, "r" to start a new game
or "q" to quit. You play X against the computer unless --hot-seat is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := game.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			s := game.NewSession()
			s.VsComputer = !hotSeat
			s.Difficulty = d
			return play(cmd.InOrStdin(), cmd.OutOrStdout(), s, bot.NewSelector(nil))
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", string(game.Hard), "computer policy: easy, medium or hard")
	cmd.Flags().BoolVar(&hotSeat, "hot-seat", false, "two humans share the terminal")
	return cmd
}

// play runs the terminal loop until input ends or the player quits.
func play(in io.Reader, out io.Writer, s *game.Session, selector *bot.Selector) error {
	scanner := bufio.NewScanner(in)

	for {
		if s.ComputerToMove() {
			index, err := selector.SelectMove(s.Game.Board, s.Difficulty)
			if err != nil {
				return fmt.Errorf("computer could not move: %w", err)
			}
			if _, err := s.ApplyMove(index, game.ComputerMark); err != nil {
				return fmt.Errorf("computer played an illegal move: %w", err)
			}
			fmt.Fprintf(out, "Computer plays %d\n", index)
		}

		renderBoard(out, s.Game.Board)
		if s.Game.Active() {
			fmt.Fprintf(out, "%s to move> ", s.HumanMark())
		} else {
			fmt.Fprintf(out, "%s Score X %d : O %d. Press r for a new game or q to quit> ",
				describeResult(s.Game.State), s.Scores.X, s.Scores.O)
		}

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "q", "quit":
			return nil
		case "r", "reset":
			s.Reset()
			continue
		case "":
			continue
		}

		index, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(out, "Enter a cell index between 0 and 8\n")
			continue
		}
		if _, err := s.ApplyMove(index, s.HumanMark()); err != nil {
			if errors.Is(err, game.ErrInvalidMove) {
				fmt.Fprintf(out, "Illegal move: %v\n", err)
				continue
			}
			return err
		}
	}
}

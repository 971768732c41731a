package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"

	"github.com/spf13/cobra"
)

// Tally counts the outcomes of a self-play run.
type Tally struct {
	X     game.Difficulty `json:"x"`
	O     game.Difficulty `json:"o"`
	Games int             `json:"games"`
	XWins int             `json:"x_wins"`
	OWins int             `json:"o_wins"`
	Draws int             `json:"draws"`
}

func newSelfPlayCmd() *cobra.Command {
	var (
		xPolicy, oPolicy string
		games            int
		seed             uint64
		output           string
	)

	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play two computer policies against each other",
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := game.ParseDifficulty(xPolicy)
			if err != nil {
				return err
			}
			o, err := game.ParseDifficulty(oPolicy)
			if err != nil {
				return err
			}
			if games <= 0 {
				return fmt.Errorf("games must be positive, got %d", games)
			}

			rng := bot.Random(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
			if seed == 0 {
				rng = nil
			}
			tally, err := SelfPlay(bot.NewSelector(rng), x, o, games)
			if err != nil {
				return err
			}
			return printTally(cmd.OutOrStdout(), tally, output)
		},
	}
	cmd.Flags().StringVar(&xPolicy, "x", string(game.Hard), "policy playing X")
	cmd.Flags().StringVar(&oPolicy, "o", string(game.Hard), "policy playing O")
	cmd.Flags().IntVarP(&games, "games", "n", 100, "number of games")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 picks one")
	cmd.Flags().StringVar(&output, "output", "text", "output format: text, json")
	return cmd
}

// SelfPlay plays games between policy x (moving first) and policy o.
func SelfPlay(selector *bot.Selector, x, o game.Difficulty, games int) (Tally, error) {
	tally := Tally{X: x, O: o, Games: games}
	policy := map[game.PlayerMark]game.Difficulty{game.PlayerX: x, game.PlayerO: o}

	s := game.NewSession()
	for range games {
		s.Reset()
		for s.Game.Active() {
			mark := s.Game.CurrentTurn
			index, err := selector.SelectMoveFor(s.Game.Board, mark, policy[mark])
			if err != nil {
				return tally, err
			}
			if _, err := s.ApplyMove(index, mark); err != nil {
				return tally, err
			}
		}
		if s.Game.State.Status == game.StatusDraw {
			tally.Draws++
		}
	}
	tally.XWins = s.Scores.X
	tally.OWins = s.Scores.O
	return tally, nil
}

func printTally(w io.Writer, t Tally, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case "", "text":
		fmt.Fprintf(w, "%s (X) vs %s (O), %d games\n", t.X, t.O, t.Games)
		fmt.Fprintf(w, "X wins: %d\nO wins: %d\nDraws:  %d\n", t.XWins, t.OWins, t.Draws)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe against a minimax computer opponent",
		Long: `tictactoe serves the game over HTTP and websockets, plays it in the terminal,
or pits two computer policies against each other.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newSelfPlayCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

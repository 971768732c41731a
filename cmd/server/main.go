package main

import (
	"os"

	"ctchen222/tictactoe/internal/cli"
)

func main() {
	cmd := cli.NewServeCmd()
	cmd.Use = "server"
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

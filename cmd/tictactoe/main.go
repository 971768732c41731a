package main

import "ctchen222/tictactoe/internal/cli"

func main() {
	cli.Execute()
}

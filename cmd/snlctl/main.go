package main

import "github.com/mcoot/snakeladder/internal/cli"

func main() {
	cli.Execute()
}

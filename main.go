package main

import (
	"github.com/jpoffo/valuador/internal/cli"
)

func main() {
	cli.Run()
}

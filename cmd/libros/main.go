package main

import (
	"os"

	"github.com/libros-dev/libros/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

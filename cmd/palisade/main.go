package main

import (
	"os"

	"palisade/cmd/palisade/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

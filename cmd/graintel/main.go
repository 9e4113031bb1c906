package main

import (
	"os"

	"github.com/graintel/graintel/cmd/graintel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/brettbedarf/ffs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

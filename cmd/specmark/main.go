package main

import (
	"os"

	"github.com/specmark/specmark/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

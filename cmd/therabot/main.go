package main

import (
	"os"

	"github.com/therabot/therabot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

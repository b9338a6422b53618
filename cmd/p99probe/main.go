package main

import (
	"os"

	"github.com/shivanshkc/p99probe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/rustyeddy/minitrade/cmd/minitrade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

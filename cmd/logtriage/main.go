package main

import (
	"os"

	"github.com/parity-tools/logtriage/cmd/logtriage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

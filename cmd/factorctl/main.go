package main

import (
	"os"

	"github.com/Paulpandian-ai/factor-impact-intelligence/cmd/factorctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

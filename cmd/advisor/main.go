package main

import (
	"os"

	"github.com/aristath/portfolio-advisor/cmd/advisor/commands"
)

// main is the entry point for the advisor operations CLI: go run ./cmd/advisor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command kagent is the entry point for the knowledge agent backend.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// chat and indexing admin API.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/kagent-go/cmd/kagent/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

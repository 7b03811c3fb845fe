// Command atf is the ATF inspector CLI: it starts the MemCore expression
// server against a target process, drives HookCore for demonstration and
// inspection, and dumps the reflection catalogue.
package main

import (
	"fmt"
	"os"

	"github.com/atfkit/atf/cmd/atf/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

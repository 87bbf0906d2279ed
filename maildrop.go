// Package maildrop wires the subcommand packages into the CLI application.
package maildrop

import (
	maildropcli "github.com/themadorg/maildrop/internal/cli"

	// Import for the side effect of subcommand registration.
	_ "github.com/themadorg/maildrop/internal/cli/ctl"
)

// Run parses the command line and executes the selected subcommand.
func Run() {
	maildropcli.Run()
}

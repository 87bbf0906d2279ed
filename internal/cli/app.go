// Package maildropcli holds the urfave/cli application shared by all
// maildrop subcommands. Commands register themselves from init() in
// internal/cli/ctl.
package maildropcli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var app *cli.App

func init() {
	app = cli.NewApp()
	app.Usage = "inbound mail local delivery agent"
	app.Description = `Maildrop accepts a single raw message on stdin, as handed off by the MTA's
pipe-to-program delivery hook, and fans it out to every matching local
account's inbox. It also provides operator subcommands to manage the schema,
the account directory and stored attachments.

Typical MTA hook:
  maildrop deliver --config /etc/maildrop/maildrop.yml
`
	app.ExitErrHandler = func(c *cli.Context, err error) {
		cli.HandleExitCoder(err)
	}
	app.EnableBashCompletion = true
}

func AddSubcommand(cmd *cli.Command) {
	app.Commands = append(app.Commands, cmd)
}

func Run() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

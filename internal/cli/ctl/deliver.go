package ctl

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	maildropcli "github.com/themadorg/maildrop/internal/cli"
	"github.com/themadorg/maildrop/internal/config"
	"github.com/themadorg/maildrop/internal/decode"
	"github.com/themadorg/maildrop/internal/deliver"
)

func init() {
	maildropcli.AddSubcommand(&cli.Command{
		Name:  "deliver",
		Usage: "Read one raw message from stdin and deliver it to local inboxes",
		Description: `Reads a complete RFC 5322 message from stdin until EOF and runs the
delivery pipeline once: decode, recipient extraction, directory lookup and
fan-out into every matched account's inbox.

The exit status is always 0, even when an internal error is logged. The MTA
hands us the message exactly once; signalling failure would only make it
bounce or requeue, and re-delivery is its responsibility, not ours.

Example Postfix master.cf hook:
  maildrop unix - n n - - pipe
    flags=F user=maildrop argv=/usr/local/bin/maildrop deliver
`,
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "from-file",
				Usage: "Read the raw message from FILE instead of stdin (debugging)",
			},
		},
		Action: deliverCommand,
	})
}

func deliverCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "maildrop:", err)
		return nil
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "maildrop:", err)
		return nil
	}
	defer log.Sync() //nolint:errcheck

	// Intentional catch-log-exit-success boundary, see command description.
	if err := runDeliver(c, cfg, log); err != nil {
		log.Error("delivery failed", zap.Error(err))
	}
	return nil
}

func runDeliver(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	var input io.Reader = os.Stdin
	if path := c.String("from-file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	// The message is fully buffered before any processing starts.
	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty input")
	}

	msg, err := decode.Read(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	gdb, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	agent := deliver.NewAgent(gdb, log)
	_, err = agent.Deliver(c.Context, msg)
	return err
}

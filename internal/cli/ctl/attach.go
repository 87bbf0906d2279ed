package ctl

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/themadorg/maildrop/internal/attach"
	maildropcli "github.com/themadorg/maildrop/internal/cli"
)

func init() {
	maildropcli.AddSubcommand(&cli.Command{
		Name:  "attach",
		Usage: "Access stored attachments",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Write one attachment's bytes to stdout",
				ArgsUsage: "MESSAGE_ID ATTACHMENT_ID",
				Flags:     []cli.Flag{configFlag()},
				Action:    attachGet,
			},
			{
				Name:      "list",
				Usage:     "List a message's attachment manifest",
				ArgsUsage: "MESSAGE_ID",
				Flags:     []cli.Flag{configFlag()},
				Action:    attachList,
			},
		},
	})
}

func attachGet(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: maildrop attach get MESSAGE_ID ATTACHMENT_ID", 2)
	}
	gdb, err := openDB(c)
	if err != nil {
		return err
	}

	store := attach.NewStore(gdb)
	mediaType, content, err := store.Fetch(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		if errors.Is(err, attach.ErrNotFound) {
			return cli.Exit("attachment not found", 1)
		}
		return cli.Exit(err, 1)
	}

	fmt.Fprintf(os.Stderr, "content-type: %s\n", mediaType)
	if _, err := os.Stdout.Write(content); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func attachList(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: maildrop attach list MESSAGE_ID", 2)
	}
	gdb, err := openDB(c)
	if err != nil {
		return err
	}

	store := attach.NewStore(gdb)
	manifest, err := store.Manifest(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, entry := range manifest {
		fmt.Printf("%s\t%s\t%s\n", entry.ID, entry.MediaType, entry.Filename)
	}
	return nil
}

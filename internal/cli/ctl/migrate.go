package ctl

import (
	"fmt"

	"github.com/urfave/cli/v2"

	maildropcli "github.com/themadorg/maildrop/internal/cli"
	"github.com/themadorg/maildrop/internal/db"
)

func init() {
	maildropcli.AddSubcommand(&cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			gdb, err := openDatabase(cfg)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := db.Migrate(gdb); err != nil {
				return cli.Exit(fmt.Errorf("migration failed: %w", err), 1)
			}
			fmt.Println("schema up to date")
			return nil
		},
	})
}

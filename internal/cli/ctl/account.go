package ctl

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	maildropcli "github.com/themadorg/maildrop/internal/cli"
	"github.com/themadorg/maildrop/internal/cli/clitools"
	"github.com/themadorg/maildrop/internal/db"
	"github.com/themadorg/maildrop/internal/deliver"
)

func init() {
	maildropcli.AddSubcommand(&cli.Command{
		Name:  "account",
		Usage: "Manage the local account directory",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an account and its inbox mailbox",
				ArgsUsage: "EMAIL",
				Flags:     []cli.Flag{configFlag()},
				Action:    accountCreate,
			},
			{
				Name:   "list",
				Usage:  "List all accounts",
				Flags:  []cli.Flag{configFlag()},
				Action: accountList,
			},
			{
				Name:      "remove",
				Usage:     "Remove an account, its mailboxes and placements",
				ArgsUsage: "EMAIL",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Don't ask for confirmation",
					},
				},
				Action: accountRemove,
			},
		},
	})
}

func accountCreate(c *cli.Context) error {
	email := deliver.Normalize(c.Args().First())
	if email == "" {
		return cli.Exit("usage: maildrop account create EMAIL", 2)
	}
	gdb, err := openDB(c)
	if err != nil {
		return err
	}

	user := db.User{ID: uuid.New().String(), Email: email}
	if err := gdb.Create(&user).Error; err != nil {
		return cli.Exit(fmt.Errorf("failed to create account: %w", err), 1)
	}
	inbox := db.Mailbox{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Name:   "Inbox",
		Role:   db.RoleInbox,
	}
	if err := gdb.Create(&inbox).Error; err != nil {
		return cli.Exit(fmt.Errorf("failed to create inbox mailbox: %w", err), 1)
	}
	fmt.Printf("created account %s (%s)\n", user.Email, user.ID)
	return nil
}

func accountList(c *cli.Context) error {
	gdb, err := openDB(c)
	if err != nil {
		return err
	}
	var users []db.User
	if err := gdb.Order("email").Find(&users).Error; err != nil {
		return cli.Exit(err, 1)
	}
	for _, u := range users {
		fmt.Printf("%s\t%s\n", u.ID, u.Email)
	}
	return nil
}

func accountRemove(c *cli.Context) error {
	email := deliver.Normalize(c.Args().First())
	if email == "" {
		return cli.Exit("usage: maildrop account remove EMAIL", 2)
	}
	if !c.Bool("yes") && !clitools.Confirmation("Remove account "+email+" and all its mailboxes", false) {
		return errors.New("cancelled")
	}
	gdb, err := openDB(c)
	if err != nil {
		return err
	}

	var user db.User
	if err := gdb.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cli.Exit(fmt.Sprintf("no such account: %s", email), 1)
		}
		return cli.Exit(err, 1)
	}

	// Stored messages stay: they may still be placed in other accounts'
	// mailboxes. Only this account's linkage rows go away.
	if err := gdb.Where("user_id = ?", user.ID).Delete(&db.MailboxMessage{}).Error; err != nil {
		return cli.Exit(err, 1)
	}
	if err := gdb.Where("user_id = ?", user.ID).Delete(&db.Mailbox{}).Error; err != nil {
		return cli.Exit(err, 1)
	}
	if err := gdb.Delete(&user).Error; err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("removed account %s\n", email)
	return nil
}

func openDB(c *cli.Context) (*gorm.DB, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err, 1)
	}
	gdb, err := openDatabase(cfg)
	if err != nil {
		return nil, cli.Exit(err, 1)
	}
	return gdb, nil
}

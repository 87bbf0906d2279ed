package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config selects the database driver and connection parameters.
type Config struct {
	Driver string
	DSN    []string
	Debug  bool
}

// New initializes a GORM database connection based on the driver and DSN.
func New(cfg Config) (*gorm.DB, error) {
	dsnStr := strings.Join(cfg.DSN, " ")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite3", "sqlite":
		dialector = sqlite.Open(dsnStr)
	case "postgres":
		dialector = postgres.Open(dsnStr)
	case "mysql":
		dialector = mysql.Open(dsnStr)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormCfg := &gorm.Config{}
	if !cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all maildrop models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Mailbox{},
		&Message{},
		&MessageAddress{},
		&MailboxMessage{},
		&Attachment{},
	)
}

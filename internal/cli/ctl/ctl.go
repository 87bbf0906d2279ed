// Package ctl implements the maildrop subcommands.
package ctl

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/themadorg/maildrop/internal/config"
	"github.com/themadorg/maildrop/internal/db"
)

// loadConfig reads the config file named by --config, falling back to
// defaults plus environment overrides when the flag is unset.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	return db.New(db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.Database.Debug,
	})
}

// newLogger builds the process logger. Everything goes to stderr: stdout
// stays clean for command output and the MTA owns our stdin.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to the maildrop YAML configuration file",
		EnvVars: []string{"MAILDROP_CONFIG"},
	}
}

// Command b2xfer is a small command-line front end for package b2,
// structured the way the teacher's bin/b2keys lays out a subcommands-based
// CLI: one subcommand type per verb, registered with
// google/subcommands.Register.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nimbusb2/b2core/b2"
	"github.com/nimbusb2/b2core/internal/config"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&uploadCmd{}, "")
	subcommands.Register(&downloadCmd{}, "")
	subcommands.Register(&cleanupCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// newSession builds a connected Session from the default config file plus
// environment overrides, the pattern every subcommand shares.
func newSession(ctx context.Context) (*b2.Session, error) {
	cfg := config.Load(config.DefaultConfigPath())
	if v := os.Getenv("B2_ACCOUNT_ID"); v != "" {
		cfg.KeyID = v
	}
	if v := os.Getenv("B2_SECRET_KEY"); v != "" {
		cfg.ApplicationKey = v
	}
	if cfg.KeyID == "" || cfg.ApplicationKey == "" {
		return nil, fmt.Errorf("b2xfer: no credentials: set B2_ACCOUNT_ID/B2_SECRET_KEY or keyId/applicationKey in %s", config.DefaultConfigPath())
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := log.Logger.Level(lvl)

	s := b2.NewSession(cfg.KeyID, cfg.ApplicationKey, b2.Config{
		RetryCount:          cfg.RetryCount,
		UploadConnections:   cfg.UploadConnections,
		DownloadConnections: cfg.DownloadConnections,
		UploadCutoffSize:    cfg.UploadCutoffSize,
		UploadPartSize:      cfg.UploadPartSize,
		DownloadCutoffSize:  cfg.DownloadCutoffSize,
		DownloadPartSize:    cfg.DownloadPartSize,
		APIBase:             cfg.APIBase,
		Logger:              &logger,
	})
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

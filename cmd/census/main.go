package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/census/internal/config"
	"github.com/dukerupert/census/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "census",
		Short:         "Household registration service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("db-path", "", "sqlite database path (default census.db)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: text or json")

	load := func(cmd *cobra.Command) (config.Config, error) {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return config.Config{}, err
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load), newAdminCmd(load), newBackupCmd(load))
	return root
}

// loader reads the configuration for a subcommand.
type loader func(cmd *cobra.Command) (config.Config, error)

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/census/internal/backup"
	"github.com/dukerupert/census/internal/config"
	"github.com/dukerupert/census/internal/database"
)

const passphraseEnv = "CENSUS_BACKUP_PASSPHRASE"

func s3Config(cfg config.Config) backup.S3Config {
	return backup.S3Config{
		Endpoint:  cfg.BackupEndpoint,
		Bucket:    cfg.BackupBucket,
		Region:    cfg.BackupRegion,
		AccessKey: cfg.BackupAccessKey,
		SecretKey: cfg.BackupSecretKey,
		Prefix:    cfg.BackupPrefix,
	}
}

func passphrase() (string, error) {
	p := os.Getenv(passphraseEnv)
	if p == "" {
		return "", errors.New(passphraseEnv + " must be set")
	}
	return p, nil
}

func newBackupCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted database snapshots in S3-compatible storage",
	}

	var prune bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Snapshot the database and upload it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			pass, err := passphrase()
			if err != nil {
				return err
			}
			m, err := backup.NewManager(s3Config(cfg), slog.Default())
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			snap, err := m.Run(cmd.Context(), db, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "uploaded %s (%d bytes)\n", snap.Key, snap.Size)

			if prune {
				n, err := m.Prune(cmd.Context(), cfg.BackupRetention)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "pruned %d snapshot(s) older than %s\n", n, cfg.BackupRetention)
			}
			return nil
		},
	}
	run.Flags().BoolVar(&prune, "prune", false, "delete snapshots older than the retention period afterwards")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			m, err := backup.NewManager(s3Config(cfg), slog.Default())
			if err != nil {
				return err
			}
			snaps, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tCREATED")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Key, s.Size, s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}

	restore := &cobra.Command{
		Use:   "restore <key>",
		Short: "Replace the database with a stored snapshot (stop the server first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			pass, err := passphrase()
			if err != nil {
				return err
			}
			m, err := backup.NewManager(s3Config(cfg), slog.Default())
			if err != nil {
				return err
			}
			if err := m.Restore(cmd.Context(), args[0], pass, cfg.DBPath); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "restored %s into %s\n", args[0], cfg.DBPath)
			return nil
		},
	}

	cmd.AddCommand(run, list, restore)
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeDays int

// Migrations already ran while the container connected
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover-events",
	Short: "Requeue capture events left unacknowledged by a crashed worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := container.RecoverEvents(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to recover events: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d capture event(s)\n", n)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge-events",
	Short: "Delete capture images and event rows older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := purgeDays
		if !cmd.Flags().Changed("days") {
			days = container.GetConfig().Storage.RetentionDays
		}

		dirs, rows, err := container.PurgeEvents(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d directories and %d event rows older than %d days\n", dirs, rows, days)
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", 0, "Retention in days (defaults to EVENT_RETENTION_DAYS)")
}

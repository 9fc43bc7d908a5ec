package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"face-attendance/pkg/di"
	"face-attendance/pkg/logger"
)

// Version is the application version.
const Version = "1.0.0"

var (
	container *di.Container
	logDir    string
)

var rootCmd = &cobra.Command{
	Use:          "facectl",
	Short:        "Maintenance commands for the face attendance service",
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(logDir, false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		container = di.NewContainer()
		if err := container.InitializeMaintenance(); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Cleanup()
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Directory for log files")
	rootCmd.AddCommand(migrateCmd, recoverCmd, purgeCmd)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/northwind/salesportal/cmd/portalctl/cmd"
	"github.com/northwind/salesportal/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tools for the sales portal",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.SetPasswordCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CreateTablesCmd())
	rootCmd.AddCommand(cmd.SweepCmd())
	rootCmd.AddCommand(cmd.PurgeRevocationsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Flush()
	if err != nil {
		os.Exit(1)
	}
}

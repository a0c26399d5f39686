package cmd

import (
	"fmt"

	"github.com/northwind/salesportal/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	var down bool

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations (sqlite and pgx stores)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cfg.UsesSQL() {
				return fmt.Errorf("store driver %q has no migrations", cfg.StoreDriver)
			}

			conn, err := db.Init(cmd.Context(), cfg.StoreDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer conn.Close()

			if down {
				return db.MigrateDown(cmd.Context(), conn.DB, cfg.StoreDriver)
			}
			return db.RunMigrations(cmd.Context(), conn.DB, cfg.StoreDriver)
		},
	}

	c.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return c
}

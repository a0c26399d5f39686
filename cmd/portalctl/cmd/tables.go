package cmd

import (
	"fmt"

	"github.com/northwind/salesportal/internal/app"
	"github.com/northwind/salesportal/internal/config"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/spf13/cobra"
)

func CreateTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create the DynamoDB tables, category index and revocation TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.StoreDriver != config.StoreDynamoDB {
				return fmt.Errorf("store driver is %q, not dynamodb", cfg.StoreDriver)
			}

			client, err := repository.NewDynamoClient(cmd.Context(), app.DynamoConfig(cfg))
			if err != nil {
				return err
			}

			tables := app.DynamoTables(cfg)
			err = repository.CreateTables(cmd.Context(), client, tables)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "tables ready: %s, %s, %s\n", tables.Content, tables.Credentials, tables.Revocations)
			return nil
		},
	}
}

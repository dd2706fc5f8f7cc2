package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply record store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			switch cfg.Storage.Driver {
			case string(database.DialectSQLite), string(database.DialectPostgres):
			default:
				fmt.Printf("Storage driver %q has no schema, nothing to migrate.\n", cfg.Storage.Driver)
				return nil
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			dbCfg := database.FromCentralConfig(cfg.Storage)
			db, err := database.Open(ctx, dbCfg)
			if err != nil {
				return fmt.Errorf("failed to open %s database: %w", dbCfg.Dialect, err)
			}
			defer db.Close()

			fmt.Printf("Running migrations for %s store.\n", dbCfg.Dialect)
			if err := database.Migrate(ctx, db, dbCfg.Dialect); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}

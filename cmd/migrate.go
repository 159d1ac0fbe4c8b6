package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/db"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long:  "Applies all pending embedded SQL migrations (companies, contacts, listings) with goose.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		if migrateStatus {
			version, err := db.SchemaVersion(cmd.Context(), cfg.Store.DatabaseURL)
			if err != nil {
				return eris.Wrap(err, "migrate status")
			}
			zap.L().Info("schema version", zap.Int64("version", version))
			return nil
		}

		version, err := db.Migrate(cmd.Context(), cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "migrate")
		}

		zap.L().Info("all migrations applied successfully", zap.Int64("version", version))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the applied schema version and exit")
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"taskManager/internal/app"
	"taskManager/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down>",
	Short:     "Apply or revert the database schema",
	Long:      `Apply ("up") or revert ("down") every embedded migration against the configured database.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return app.Migrate(cmd.Context(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

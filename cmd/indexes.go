package cmd

import (
	"github.com/spf13/cobra"

	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/store"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create MongoDB indexes for every collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.closer()

		disconnect, err := a.connect(cmd.Context())
		if err != nil {
			return err
		}
		defer disconnect()

		if err := store.EnsureIndexes(cmd.Context(), config.DB, a.cfg.Mongo.Collections); err != nil {
			return err
		}
		a.log.Info("indexes created", "database", a.cfg.Mongo.Database)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}

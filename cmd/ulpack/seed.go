package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/ulpack/internal/database"
	"github.com/dukerupert/ulpack/internal/sampledata"
	"github.com/dukerupert/ulpack/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the sample gear catalogue to the gear inventory list",
	Long: `Adds sample ultralight gear to the gear inventory list, creating the
list if needed. Items whose name already exists in the inventory are
skipped, so running seed more than once is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		added, err := sampledata.Seed(cmd.Context(), store.NewPackingListStore(db), store.NewGearItemStore(db), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d sample items\n", added)
		return nil
	},
}

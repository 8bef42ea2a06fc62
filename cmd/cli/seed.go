package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timepass/backend/internal/database"
	"github.com/timepass/backend/internal/seed"
)

var cleanFirst bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with development data",
	RunE: func(cmd *cobra.Command, args []string) error {
		seeder := seed.NewSeeder(database.DB)

		if cleanFirst {
			fmt.Println("Cleaning existing data...")
			if err := seeder.Clean(); err != nil {
				return err
			}
		}

		fmt.Println("Seeding development data...")
		if err := seeder.SeedDev(); err != nil {
			return err
		}

		fmt.Println("Done.")
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&cleanFirst, "clean", false, "delete existing data before seeding")
}

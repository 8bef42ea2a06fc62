package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timepass/backend/internal/database"
	"github.com/timepass/backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "timepass",
	Short: "Timepass admin CLI - database seeding and maintenance",
	Long: `Timepass admin CLI provides operational commands for the backend:
seeding development data and reconciling denormalized counters.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(os.Getenv("LOG_LEVEL"), "cli.log"); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := database.Initialize(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.Migrate()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func main() {
	defer database.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

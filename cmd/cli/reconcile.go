package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/timepass/backend/internal/database"
	"github.com/timepass/backend/internal/stories"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute denormalized counters from their source tables",
	Long: `Recomputes story view/like counts and post like/comment counts from
the authoritative view, like and comment tables. The server runs this
periodically; this command forces a single sweep right now.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running counter reconciliation...")
		start := time.Now()

		// Interval is irrelevant for a single sweep
		stories.NewReconcileService(database.DB, time.Hour).RunOnce()

		fmt.Printf("Done in %v.\n", time.Since(start))
		return nil
	},
}

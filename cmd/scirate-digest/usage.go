// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scirate-digest/internal/store"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print accumulated Gemini API usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker := store.NewUsageTracker(storageDir(cmd), os.Stderr)
		fmt.Println(tracker.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

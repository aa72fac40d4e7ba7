package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete local drafts older than drafts.max_age",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cfg := newRuntime(cmd)
		defer rt.Close()

		removed, err := rt.PruneDrafts(cmd.Context())
		if err != nil {
			fatal("Error pruning drafts", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d draft(s) older than %s\n", removed, cfg.Drafts.MaxAge)
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

package main

import (
	"os"

	"github.com/aretw0/blueprint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the section templates of the configured catalog",
	Run: func(cmd *cobra.Command, args []string) {
		rt, _ := newRuntime(cmd)
		defer rt.Close()

		if err := tui.Write(os.Stdout, tui.Catalog(rt.Studio.Templates(cmd.Context()))); err != nil {
			fatal("Error rendering templates", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

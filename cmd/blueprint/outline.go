package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/blueprint/internal/presentation/graph"
	"github.com/aretw0/blueprint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <store> <page>",
	Short: "Show the section layout of a page canvas",
	Long: `Opens the canvas for a store page, recovering any local draft, and prints its
layer stack. Formats: markdown (rendered when stdout is a terminal), mermaid, json.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		rt, _ := newRuntime(cmd)
		defer rt.Close()

		openCanvas(cmd, rt, args[0], args[1])
		st := rt.Studio.State()

		switch format {
		case "markdown", "md":
			if err := tui.Write(os.Stdout, tui.Outline(st)); err != nil {
				fatal("Error rendering outline", err)
			}
		case "mermaid":
			overlay := &graph.Overlay{Selected: st.Selected, Changed: rt.Studio.PendingChanges().ChangedIDs()}
			fmt.Print(graph.GenerateMermaid(st.Canvas, overlay))
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(st); err != nil {
				fatal("Error encoding state", err)
			}
		default:
			fatal("Unknown format", fmt.Errorf("%q (want markdown, mermaid or json)", format))
		}
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, mermaid or json")
}

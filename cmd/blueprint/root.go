package main

import (
	"fmt"
	"os"

	"github.com/aretw0/blueprint/internal/cli"
	"github.com/aretw0/blueprint/internal/config"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Blueprint is a page-builder studio for storefront pages",
	Long: `Blueprint edits storefront page canvases made of ordered sections, with undo/redo,
local draft recovery and AI layout proposals. It runs as an HTTP API, an MCP server
for AI agents, or one-shot commands against the configured backends.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default blueprint.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json or pretty")
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Server.Addr = f.Value.String()
	}
	if f := cmd.Flags().Lookup("metrics"); f != nil && f.Changed {
		cfg.Server.Metrics, _ = cmd.Flags().GetBool("metrics")
	}
	return cfg, cfg.Validate()
}

// newRuntime loads the configuration and builds a Studio from it.
// Failures are fatal for the command.
func newRuntime(cmd *cobra.Command) (*cli.Runtime, config.Config) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	rt, err := cli.Build(cfg, cli.NewLogger(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing blueprint: %v\n", err)
		os.Exit(1)
	}
	return rt, cfg
}

// fatal prints err to stderr and exits.
func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// openCanvas opens a page or exits. Warnings raised while opening, such as an
// unreachable canvas service, are printed to stderr.
func openCanvas(cmd *cobra.Command, rt *cli.Runtime, storeID, pageTypeID string) {
	if _, err := rt.Studio.Open(cmd.Context(), storeID, pageTypeID); err != nil {
		fatal("Error opening canvas", err)
	}
	for _, n := range rt.Studio.Notices() {
		if n.Level != domain.NoticeInfo {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", n.Message)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/internal/presentation/tui"
	httpAdapter "github.com/aretw0/blueprint/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio HTTP server",
	Long: `Starts a Studio behind a JSON API over HTTP, with OpenAPI request validation,
a Server-Sent Events diff stream at /events and Prometheus metrics at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, cfg := newRuntime(cmd)
		defer rt.Close()

		opts := []httpAdapter.Option{httpAdapter.WithLogger(rt.Logger)}
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetricsHandler(rt.Metrics.Handler()))
		}
		handler, err := httpAdapter.NewHandler(rt.Studio, opts...)
		if err != nil {
			fatal("Error building HTTP handler", err)
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(os.Stdout, blueprint.Version)
		}

		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		go func() {
			if err := rt.WatchCatalog(watchCtx); err != nil {
				rt.Logger.Error("Template watcher failed", "err", err)
			}
		}()
		go func() {
			if err := rt.SchedulePruning(watchCtx); err != nil {
				rt.Logger.Error("Draft pruning stopped", "err", err)
			}
		}()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Blueprint Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fatal("Server error", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)
			stopWatch()

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Blueprint Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics (overrides server.metrics)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

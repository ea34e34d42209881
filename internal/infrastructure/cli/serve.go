package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/specmark/specmark/internal/infrastructure/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace dashboard over HTTP",
	Long: `Serve starts the dashboard server: a JSON API for spec documents
and progress stats, plus a websocket change stream at /ws that pushes
every checklist change as it happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		if _, err := ws.Tracking.LoadAll(); err != nil {
			return MapError(err)
		}

		addr := serveAddr
		if addr == "" {
			cfg, err := ws.Repo.LoadConfig()
			if err != nil {
				return MapError(err)
			}
			addr = cfg.DashboardAddr
		}

		srv := dashboard.NewServer(addr, ws.Tracking)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			fmt.Println("Dashboard stopped.")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from .specmark/config.yaml)")
	RootCmd.AddCommand(serveCmd)
}

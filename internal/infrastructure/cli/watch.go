package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/specmark/specmark/internal/infrastructure/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload spec documents when their files change on disk",
	Long: `Watch monitors the workspace for spec file changes and reloads the
affected documents, printing each reload. Edits made by other tools show
up without restarting specmark. Ctrl+C stops watching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		entries, err := ws.Tracking.LoadAll()
		if err != nil {
			return MapError(err)
		}
		byPath := make(map[string]int, len(entries))
		for _, e := range entries {
			byPath[e.Path] = e.SpecID
		}

		watcher, err := watch.NewSpecWatcher(watchDebounce, func(ev watch.ChangeEvent) {
			specID, known := byPath[ev.Path]
			if !known {
				return
			}
			if ev.ChangeType == "remove" || ev.ChangeType == "rename" {
				fmt.Printf("%s %s: spec %d gone\n", time.Now().Format("15:04:05"), ev.Path, specID)
				return
			}
			if _, err := ws.Tracking.Reload(specID); err != nil {
				fmt.Printf("%s %s: reload failed: %v\n", time.Now().Format("15:04:05"), ev.Path, err)
				return
			}
			fmt.Printf("%s %s: spec %d reloaded\n", time.Now().Format("15:04:05"), ev.Path, specID)
		})
		if err != nil {
			return err
		}
		if err := watcher.WatchRecursive(ws.Repo.Root()); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %d spec(s). Press Ctrl+C to stop.\n", len(entries))
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Debounce window for file events")
	RootCmd.AddCommand(watchCmd)
}

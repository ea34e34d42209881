package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent checklist change",
	Long: `Undo reverts the most recent checklist change across all loaded
specs and persists the reverted state. Repeated undo walks further back;
redo re-applies what undo reverted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		if _, err := ws.Tracking.LoadAll(); err != nil {
			return MapError(err)
		}
		change, err := ws.Tracking.Undo()
		if err != nil {
			return MapError(err)
		}
		if change == nil {
			fmt.Println("Nothing to undo.")
			return nil
		}
		fmt.Printf("Undid %s: now %s\n", change.Item, mark(change.NewState))
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the most recently undone checklist change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		if _, err := ws.Tracking.LoadAll(); err != nil {
			return MapError(err)
		}
		change, err := ws.Tracking.Redo()
		if err != nil {
			return MapError(err)
		}
		if change == nil {
			fmt.Println("Nothing to redo.")
			return nil
		}
		fmt.Printf("Redid %s: now %s\n", change.Item, mark(change.NewState))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the committed checklist change history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		changes := ws.Tracking.History()
		if len(changes) == 0 {
			fmt.Println("No changes recorded this session.")
			return nil
		}
		for _, c := range changes {
			fmt.Printf("%s  %-8s %s: %s -> %s\n",
				c.Timestamp.Format("15:04:05"), c.Source, c.Item, mark(c.OldState), mark(c.NewState))
		}
		return nil
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush <spec-id>",
	Short: "Retry persisting the in-memory checklist state of one spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid spec id %q", args[0])
		}
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		if err := ws.Tracking.EnsureLoaded(specID); err != nil {
			return MapError(err)
		}
		if err := ws.Tracking.Flush(specID); err != nil {
			return MapError(err)
		}
		fmt.Printf("Spec %d flushed.\n", specID)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
	RootCmd.AddCommand(redoCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(flushCmd)
}

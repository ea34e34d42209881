package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
)

var checkCmd = &cobra.Command{
	Use:   "check <item-id>...",
	Short: "Mark checklist items as done",
	Long: `Check marks one or more checklist items as done and persists each
change back to its file, rewriting only the affected lines.

Item ids have the form spec/section/ordinal, e.g.:
  specmark check "3/Acceptance Criteria/2"

Multiple items are applied as one batch: each changed file is written
exactly once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetChecked(args, true)
	},
}

var uncheckCmd = &cobra.Command{
	Use:   "uncheck <item-id>...",
	Short: "Mark checklist items as not done",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetChecked(args, false)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Flip one checklist item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := document.ParseItemID(args[0])
		if err != nil {
			return err
		}
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		change, err := ws.Tracking.Toggle(id, checkbox.SourceCLI)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("%s: %s -> %s\n", change.Item, mark(change.OldState), mark(change.NewState))
		return nil
	},
}

func runSetChecked(args []string, checked bool) error {
	ids := make([]document.ItemID, 0, len(args))
	for _, arg := range args {
		id, err := document.ParseItemID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	ws, err := currentWorkspace()
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		change, err := ws.Tracking.SetChecked(ids[0], checked, checkbox.SourceCLI)
		if err != nil {
			return MapError(err)
		}
		if change == nil {
			fmt.Printf("%s already %s\n", ids[0], mark(checked))
			return nil
		}
		fmt.Printf("%s: %s -> %s\n", change.Item, mark(change.OldState), mark(change.NewState))
		return nil
	}

	updates := make([]checkbox.Update, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, checkbox.Update{ID: id, Checked: checked})
	}
	changes, err := ws.Tracking.BatchUpdate(updates, checkbox.SourceCLI)
	if err != nil {
		return MapError(err)
	}
	for _, c := range changes {
		fmt.Printf("%s: %s -> %s\n", c.Item, mark(c.OldState), mark(c.NewState))
	}
	fmt.Printf("%d item(s) changed\n", len(changes))
	return nil
}

func mark(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func init() {
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(uncheckCmd)
	RootCmd.AddCommand(toggleCmd)
}

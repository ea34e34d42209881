package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <spec-id> [event]",
	Short: "Show or transition a spec document's lifecycle status",
	Long: `Without an event, status prints the spec's current status. With an
event it applies the lifecycle transition and rewrites only the status
metadata line of the file.

Events: plan, start, review, approve, block, unblock, reopen, deprecate

Examples:
  specmark status 3
  specmark status 3 start
  specmark status 3 approve`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		specID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid spec id %q", args[0])
		}
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		doc, err := ws.Tracking.Document(specID)
		if err != nil {
			return MapError(err)
		}

		if len(args) == 1 {
			fmt.Printf("Spec %d (%s): %s\n", specID, doc.Title, doc.Metadata.Status)
			return nil
		}

		path, err := ws.Tracking.Tracker().Path(specID)
		if err != nil {
			return MapError(err)
		}
		next, err := ws.Documents.TransitionStatus(path, args[1])
		if err != nil {
			return MapError(err)
		}
		// Reload so the tracker sees the rewritten file.
		if _, err := ws.Tracking.Reload(specID); err != nil {
			return MapError(err)
		}
		fmt.Printf("Spec %d is now %s\n", specID, next)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

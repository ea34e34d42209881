package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the spec documents discovered in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		entries, err := ws.Tracking.LoadAll()
		if err != nil {
			return MapError(err)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No spec documents found. Check spec_globs in .specmark/config.yaml.")
			return nil
		}
		for _, e := range entries {
			status := e.Status
			if status == "" {
				status = "-"
			}
			fmt.Printf("%4d  %-12s %-40s %s\n", e.SpecID, status, e.Title, e.Path)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(listCmd)
}

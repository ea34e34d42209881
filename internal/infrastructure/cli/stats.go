package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [spec-id]",
	Short: "Show checklist completion statistics",
	Long: `Stats shows completion counts and percentages, broken down by
section. Without a spec id it summarizes every discovered spec.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			specID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid spec id %q", args[0])
			}
			stats, err := ws.Tracking.Stats(specID)
			if err != nil {
				return MapError(err)
			}
			if statsJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Printf("Spec %d: %d/%d done (%.1f%%)\n", specID, stats.Checked, stats.Total, stats.Percentage)
			sections := make([]string, 0, len(stats.BySection))
			for name := range stats.BySection {
				sections = append(sections, name)
			}
			sort.Strings(sections)
			for _, name := range sections {
				s := stats.BySection[name]
				fmt.Printf("  %-30s %d/%d\n", name, s.Checked, s.Total)
			}
			return nil
		}

		all, err := ws.Tracking.WorkspaceStats()
		if err != nil {
			return MapError(err)
		}
		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		}
		ids := make([]int, 0, len(all))
		for id := range all {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			s := all[id]
			fmt.Printf("Spec %4d: %3d/%-3d done (%.1f%%)\n", id, s.Checked, s.Total, s.Percentage)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statsCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specmark/specmark/pkg/domain/document"
)

var lintCmd = &cobra.Command{
	Use:   "lint [path...]",
	Short: "Report parse warnings for spec documents",
	Long: `Lint parses the given spec files (or every discovered file when
none are given) and reports warnings: duplicate sections, unterminated
code fences, malformed metadata values, missing or conflicting spec ids.
Exits non-zero when any warning-severity finding exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			entries, err := ws.Repo.Discover()
			if err != nil {
				return MapError(err)
			}
			for _, e := range entries {
				paths = append(paths, e.Path)
			}
		}

		var findings int
		for _, path := range paths {
			warnings, err := ws.Documents.Lint(path)
			if err != nil {
				return MapError(err)
			}
			for _, w := range warnings {
				if w.Severity == document.SeverityWarning {
					findings++
				}
				if w.Line > 0 {
					fmt.Printf("%s:%d: %s: %s\n", path, w.Line, w.Severity, w.Message)
				} else {
					fmt.Printf("%s: %s: %s\n", path, w.Severity, w.Message)
				}
			}
		}

		if findings > 0 {
			return fmt.Errorf("%d warning(s) found", findings)
		}
		fmt.Println("No warnings.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(lintCmd)
}

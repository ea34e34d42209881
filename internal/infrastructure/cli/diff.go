package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	diffFormat  string
	diffNoColor bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Structurally compare two spec document snapshots",
	Long: `Diff parses both files and reports what changed structurally:
title, metadata fields, dependencies (as a set), sections, checklist
items and code blocks. Modified sections carry line-level hunks with
context, like a unified diff scoped to the section body.

Formats:
  text (default)  Human-readable change summary
  unified         Unified-diff rendering of modified bodies
  json            Full diff model as JSON`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		diff, err := ws.Diffs.DiffFiles(args[0], args[1])
		if err != nil {
			return MapError(err)
		}

		switch strings.ToLower(diffFormat) {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(diff)
		case "unified":
			fmt.Print(diff.Unified(args[0], args[1]))
		case "text", "":
			fmt.Print(diff.Text(!diffNoColor))
		default:
			return fmt.Errorf("unsupported format: %s", diffFormat)
		}

		if !diff.Empty() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format (text, unified, json)")
	diffCmd.Flags().BoolVar(&diffNoColor, "no-color", false, "Disable colored output")
	RootCmd.AddCommand(diffCmd)
}

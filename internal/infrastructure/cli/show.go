package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <spec-id>",
	Short: "Show the structural model of one spec document",
	Long: `Show parses and prints one spec document: title, metadata,
sections, checklist items with their stable ids, code blocks and any
parse warnings.

Formats:
  text (default)  Human-readable summary
  json            Full structural model as JSON (schema-validated)
  yaml            Full structural model as YAML`,
	Args: cobra.ExactArgs(1),
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

		switch strings.ToLower(showFormat) {
		case "json":
			data, err := ws.Documents.ExportJSON(doc)
			if err != nil {
				return MapError(err)
			}
			fmt.Println(string(data))
			return nil
		case "yaml":
			data, err := ws.Documents.ExportYAML(doc)
			if err != nil {
				return MapError(err)
			}
			os.Stdout.Write(data)
			return nil
		case "text", "":
		default:
			return fmt.Errorf("unsupported format: %s", showFormat)
		}

		fmt.Printf("Title: %s\n", doc.Title)
		fmt.Printf("Spec ID: %d  Status: %s  Phase: %d\n", doc.Metadata.SpecID, doc.Metadata.Status, doc.Metadata.Phase)
		if len(doc.Metadata.Dependencies) > 0 {
			fmt.Printf("Dependencies: %s\n", strings.Join(doc.Metadata.Dependencies, ", "))
		}
		if len(doc.References) > 0 {
			refs := make([]string, 0, len(doc.References))
			for _, r := range doc.References {
				refs = append(refs, strconv.Itoa(r.TargetSpecID))
			}
			fmt.Printf("References: %s\n", strings.Join(refs, ", "))
		}

		for _, sec := range doc.Sections {
			fmt.Printf("\n## %s\n", sec.Name)
			for _, item := range doc.Checklist {
				if item.Section != sec.Name {
					continue
				}
				mark := " "
				if item.Checked {
					mark = "x"
				}
				fmt.Printf("  [%s] %-50s (%s)\n", mark, item.Text, item.ID)
			}
		}

		if len(doc.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for _, w := range doc.Warnings {
				if w.Line > 0 {
					fmt.Printf("  %s: line %d: %s\n", w.Severity, w.Line, w.Message)
				} else {
					fmt.Printf("  %s: %s\n", w.Severity, w.Message)
				}
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format (text, json, yaml)")
	RootCmd.AddCommand(showCmd)
}

package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "specmark",
	Version: Version,
	Short:   "Structural modeling and tracking for markdown spec documents",
	Long: `Specmark parses markdown spec documents into a lossless structural
model, tracks their checklist items with stable positional ids, and
compares document snapshots structurally. Edits made through specmark
touch only the lines they change — the rest of the file stays byte
for byte as you wrote it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

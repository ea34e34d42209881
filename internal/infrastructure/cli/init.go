package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specmark/specmark/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a specmark workspace in the current directory",
	Long: `Initialize creates the .specmark directory with a default
configuration. Spec files are discovered via the spec_globs patterns in
.specmark/config.yaml (default: specs/**/*.md).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		if ws.Repo.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}
		if err := ws.Repo.Initialize(); err != nil {
			return MapError(err)
		}
		if err := ws.Repo.SaveConfig(storage.DefaultConfig()); err != nil {
			return MapError(err)
		}
		fmt.Println("Initialized specmark workspace in .specmark/")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}

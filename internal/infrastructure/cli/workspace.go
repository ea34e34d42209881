package cli

import (
	"os"

	"github.com/specmark/specmark/internal/infrastructure/wiring"
)

// currentWorkspace wires the services for the working directory. Workspaces
// without a .specmark directory still work with default configuration.
func currentWorkspace() (*wiring.Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return wiring.NewWorkspace(cwd), nil
}

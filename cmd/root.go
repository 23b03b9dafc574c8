package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/promptdeck/internal/config"
)

// globalCfg holds the global configuration, populated in PersistentPreRunE.
// Workspace commands merge the per-workspace file on top of it.
var globalCfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "promptdeck",
	Short: "Edit structured prompt files with content history and a draggable workspace tree",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		g, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		globalCfg = g
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// workspaceConfig merges the workspace's .promptdeck.json over the global
// config.
func workspaceConfig(dir string) (config.Config, error) {
	project, err := config.LoadProject(dir)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading workspace config: %w", err)
	}
	return config.Merge(globalCfg, project), nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/promptdeck/internal/recent"
	"github.com/fakeyudi/promptdeck/internal/service"
	"github.com/fakeyudi/promptdeck/internal/tui"
	"github.com/fakeyudi/promptdeck/internal/watcher"
)

var noWatch bool

var openCmd = &cobra.Command{
	Use:   "open [dir]",
	Short: "Open a workspace in the editor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("open requires an interactive terminal")
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		cfg, err := workspaceConfig(dir)
		if err != nil {
			return err
		}

		svc, err := service.Open(dir, cfg.IgnorePatterns)
		if err != nil {
			return err
		}
		defer svc.Close()

		// Remember the workspace; best-effort, the editor works without it.
		if store, err := recent.NewStore(); err == nil {
			_ = store.Touch(svc.Root())
		}

		var w *watcher.Watcher
		if !noWatch {
			w = watcher.New(svc.Root(), cfg.IgnorePatterns)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)
		}

		return tui.Run(svc, cfg, filepath.Base(svc.Root()), w)
	},
}

func init() {
	openCmd.Flags().BoolVar(&noWatch, "no-watch", false, "disable the external change watcher")
	rootCmd.AddCommand(openCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/promptdeck/internal/service"
)

var (
	historyDir   string
	historyLimit int
	historyShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "List stored snapshots of a prompt file",
	Long: `List the content-history snapshots of a prompt file, newest first.
The file path is relative to the workspace root. With --show, print the full
content of a single snapshot instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := workspaceConfig(historyDir)
		if err != nil {
			return err
		}
		svc, err := service.Open(historyDir, cfg.IgnorePatterns)
		if err != nil {
			return err
		}
		defer svc.Close()
		ctx := context.Background()

		if historyShow != "" {
			content, err := svc.SnapshotContent(ctx, historyShow)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", historyShow, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("a file path is required unless --show is given")
		}
		path := strings.Trim(args[0], "/")

		limit := historyLimit
		if limit <= 0 {
			limit = cfg.HistoryLimit
		}
		snaps, err := svc.ListHistory(ctx, path, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Snapshots of %s: %d\n", path, len(snaps))
		for _, s := range snaps {
			ts := time.Unix(s.CreatedAt, 0).Format("2006-01-02 15:04:05")
			excerpt := strings.SplitN(s.Preview, "\n", 2)[0]
			fmt.Fprintf(out, "  %s  %s  %s\n", ts, s.ID, excerpt)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDir, "dir", ".", "workspace directory")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "max snapshots to list (default from config)")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "print the full content of the snapshot with this id")
	rootCmd.AddCommand(historyCmd)
}

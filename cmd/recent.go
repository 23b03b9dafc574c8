package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/promptdeck/internal/recent"
)

var recentForget string

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := recent.NewStore()
		if err != nil {
			return err
		}

		if recentForget != "" {
			if err := store.Remove(recentForget); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", recentForget)
			return nil
		}

		entries, err := store.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No recent workspaces.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "  %s  %s\n", e.OpenedAt.Format("2006-01-02 15:04"), e.Path)
		}
		return nil
	},
}

func init() {
	recentCmd.Flags().StringVar(&recentForget, "forget", "", "remove a workspace from the list")
	rootCmd.AddCommand(recentCmd)
}

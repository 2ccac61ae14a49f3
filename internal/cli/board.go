package cli

import (
	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/tui"
)

func init() {
	rootCmd.AddCommand(boardCmd)
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive roadmap board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			if _, err := d.Tracker.Refresh(cmd.Context()); err != nil {
				return err
			}
			return tui.RunBoard(cmd.Context(), d.Tracker, cmd.OutOrStdout())
		})
	},
}

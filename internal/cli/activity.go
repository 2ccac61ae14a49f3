package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

var activityDays int

func init() {
	activityCmd.Flags().IntVarP(&activityDays, "days", "n", 14, "Number of days to show, ending today")
	rootCmd.AddCommand(activityCmd)
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show completions per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if activityDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			counts := make(map[string]int)
			for _, day := range d.Tracker.Activity() {
				counts[day.Date] = day.EventCount
			}

			today := d.Tracker.Today()
			fmt.Fprintln(out, ui.Heading(ui.IconCal, "Activity"))
			for i := activityDays - 1; i >= 0; i-- {
				date := domain.AddDays(today, -i)
				n := counts[date]
				bar := ui.Muted.Render("·")
				if n > 0 {
					bar = ui.Good.Render(strings.Repeat("■", min(n, 30)))
				}
				fmt.Fprintf(out, "  %s %3d %s\n", date, n, bar)
			}
			return nil
		})
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show overall progress, streak and achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			// Lapse a streak whose grace day passed while nothing was running.
			if _, err := d.Tracker.Refresh(cmd.Context()); err != nil {
				return err
			}
			sum := d.Tracker.Summary()
			sv := d.Tracker.StreakView()
			if statusJSON {
				return printJSON(out, map[string]any{"summary": sum, "streak": sv})
			}

			fmt.Fprintln(out, ui.Heading(ui.IconRoad, "Roadmap"))
			fmt.Fprintln(out, ui.LabelValue("Progress", ui.Bar(sum.OverallPercent, 24)))
			fmt.Fprintln(out, ui.LabelValue("Tasks", fmt.Sprintf("%d/%d", sum.TasksCompleted, sum.TotalTasks)))
			fmt.Fprintln(out, ui.LabelValue("Challenges", sum.ChallengesCompleted))
			fmt.Fprintln(out, ui.LabelValue("Streak", ui.Streak(sv.CurrentStreak, sv.AtRisk)))
			fmt.Fprintln(out, ui.LabelValue("Longest", sv.LongestStreak))
			fmt.Fprintln(out, ui.LabelValue("Bonus points", sv.StreakBonusPoints))
			if sv.NextMilestone != nil {
				fmt.Fprintln(out, ui.LabelValue("Next milestone", fmt.Sprintf("%d days (+%d)", sv.NextMilestone.Days, sv.NextMilestone.Bonus)))
			}
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d (score %d)", sum.AchievementsUnlocked, sum.AchievementsTotal, sum.Score)))
			return nil
		})
	},
}

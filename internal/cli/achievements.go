package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

var achievementsAll bool

func init() {
	achievementsCmd.Flags().BoolVarP(&achievementsAll, "all", "a", false, "Include locked achievements")
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(milestonesCmd)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List unlocked achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			sum := d.Tracker.Summary()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements %d/%d, score %d", sum.AchievementsUnlocked, sum.AchievementsTotal, sum.Score)))

			for _, a := range d.Tracker.Achievements() {
				switch {
				case a.Unlocked:
					fmt.Fprintf(out, "  %s %-28s %-10s %s\n", a.Icon, a.Name, ui.Rarity(a.Rarity), ui.Muted.Render(a.UnlockedAt.Local().Format("2006-01-02")))
				case achievementsAll:
					progress := ""
					if a.MaxProgress > 0 {
						progress = fmt.Sprintf("%d/%d", a.Progress, a.MaxProgress)
					}
					fmt.Fprintf(out, "  %s %-28s %-10s %s\n", ui.IconLock, ui.Muted.Render(a.Name), ui.Rarity(a.Rarity), ui.Muted.Render(progress))
				}
			}
			return nil
		})
	},
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Show streak milestones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			sv := d.Tracker.StreakView()
			fmt.Fprintln(out, ui.LabelValue("Streak", ui.Streak(sv.CurrentStreak, sv.AtRisk)))
			for _, m := range d.Tracker.Milestones() {
				mark := ui.Check(m.Reached)
				fmt.Fprintf(out, "  %s %3d days  +%d\n", mark, m.Days, m.Bonus)
			}
			return nil
		})
	},
}

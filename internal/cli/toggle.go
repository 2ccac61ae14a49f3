package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

var toggleChallenge bool

func init() {
	toggleCmd.Flags().BoolVarP(&toggleChallenge, "challenge", "c", false, "ITEM is a challenge, not a task")
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(resetCmd)
}

var toggleCmd = &cobra.Command{
	Use:   "toggle PROJECT ITEM",
	Short: "Mark a task (or challenge with -c) done, or undo it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			projectID, itemID := args[0], args[1]
			var (
				res tracker.Result
				err error
			)
			if toggleChallenge {
				res, err = d.Tracker.ToggleChallenge(cmd.Context(), projectID, itemID)
			} else {
				res, err = d.Tracker.ToggleTask(cmd.Context(), projectID, itemID)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				fmt.Fprintf(out, "%s no such item %s/%s, nothing changed\n", ui.IconWarn, projectID, itemID)
				return nil
			}
			if res.Completed {
				fmt.Fprintf(out, "%s %s/%s done\n", ui.IconDone, projectID, itemID)
			} else {
				fmt.Fprintf(out, "%s %s/%s reopened\n", ui.IconTodo, projectID, itemID)
			}
			printOutcome(out, res)
			return nil
		})
	},
}

var startCmd = &cobra.Command{
	Use:   "start PROJECT",
	Short: "Mark a project as started",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectCommand(cmd, args[0], "started", func(d *daemon.Daemon) func(context.Context, string) (tracker.Result, error) {
			return d.Tracker.StartProject
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset PROJECT",
	Short: "Clear a project's task and challenge progress (achievements are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectCommand(cmd, args[0], "reset", func(d *daemon.Daemon) func(context.Context, string) (tracker.Result, error) {
			return d.Tracker.ResetProject
		})
	},
}

func projectCommand(cmd *cobra.Command, projectID, verb string, pick func(*daemon.Daemon) func(context.Context, string) (tracker.Result, error)) error {
	return withDaemon(func(d *daemon.Daemon) error {
		if _, ok := d.Curriculum.Project(projectID); !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownProject, projectID)
		}
		res, err := pick(d)(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !res.Changed {
			fmt.Fprintf(out, "%s already %s\n", projectID, verb)
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", projectID, verb)
		printOutcome(out, res)
		return nil
	})
}

// printOutcome prints the streak and any unlocks after a command.
func printOutcome(out io.Writer, res tracker.Result) {
	fmt.Fprintln(out, ui.LabelValue("Streak", ui.Streak(res.Streak.CurrentStreak, false)))
	for _, a := range res.NewlyUnlocked {
		fmt.Fprintf(out, "%s Achievement unlocked: %s %s (%s)\n", ui.IconTrophy, a.Icon, ui.Gold.Render(a.Name), ui.Rarity(a.Rarity))
	}
}

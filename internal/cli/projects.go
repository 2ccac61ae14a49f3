package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(showCmd)
}

var projectsCmd = &cobra.Command{
	Use:     "projects [STAGE]",
	Aliases: []string{"ls"},
	Short:   "List stages and projects with progress",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			stages := d.Tracker.Stages()
			if len(args) == 1 {
				if _, ok := d.Curriculum.Stage(args[0]); !ok {
					return fmt.Errorf("%w: %s", domain.ErrUnknownStage, args[0])
				}
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, st := range stages {
				if len(args) == 1 && st.ID != args[0] {
					continue
				}
				fmt.Fprintf(w, "%s %s\t\t%s\n", st.Icon, ui.H2.Render(st.Title), ui.Bar(st.Percent, 12))
				for _, p := range st.Projects {
					fmt.Fprintf(w, "  %s %s\t%s\t%d/%d\n", ui.Check(p.Complete), p.Title, ui.Muted.Render(p.ID), p.TasksCompleted, p.TotalTasks)
				}
			}
			return w.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show PROJECT",
	Short: "Show a project's tasks, challenges and resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			p, err := d.Tracker.Project(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}

			fmt.Fprintln(out, ui.Heading("", p.Title), ui.Muted.Render("("+p.ID+")"))
			fmt.Fprintln(out, p.Description)
			fmt.Fprintln(out, ui.LabelValue("Stage", p.StageID))
			fmt.Fprintln(out, ui.LabelValue("Progress", ui.Bar(p.Percent, 20)))
			if p.StartedAt != nil {
				fmt.Fprintln(out, ui.LabelValue("Started", p.StartedAt.Local().Format("2006-01-02 15:04")))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.H2.Render("Tasks"))
			for _, it := range p.Tasks {
				fmt.Fprintf(out, "  %s %-20s %s\n", ui.Check(it.Completed), it.ID, it.Title)
			}
			if len(p.Challenges) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Challenges"))
				for _, it := range p.Challenges {
					fmt.Fprintf(out, "  %s %-20s %s\n", ui.Check(it.Completed), it.ID, it.Title)
				}
			}
			if len(p.Resources) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Resources"))
				for _, r := range p.Resources {
					fmt.Fprintf(out, "  %s  %s\n", r.Title, ui.Muted.Render(r.URL))
				}
			}
			return nil
		})
	},
}

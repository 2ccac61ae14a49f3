package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/daemon"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search stages, projects, tasks and challenges",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := strings.Join(args, " ")
		return withDaemon(func(d *daemon.Daemon) error {
			out := cmd.OutOrStdout()
			hits := d.Curriculum.Search(q)
			if len(hits) == 0 {
				fmt.Fprintf(out, "No matches for %q.\n", q)
				return nil
			}
			fmt.Fprintln(out, ui.Heading(ui.IconSearch, fmt.Sprintf("%d matches for %q", len(hits), q)))
			for _, h := range hits {
				fmt.Fprintf(out, "  %-9s %-30s %s\n", h.Kind, h.Title, ui.Muted.Render(hitPath(h)))
			}
			return nil
		})
	},
}

func hitPath(h curriculum.Hit) string {
	switch h.Kind {
	case curriculum.HitStage:
		return h.ID
	case curriculum.HitProject:
		return h.StageID + "/" + h.ID
	default:
		return h.StageID + "/" + h.ProjectID + "/" + h.ID
	}
}

// Package cli implements the roadmap command-line interface using Cobra.
// Each subcommand opens the local state, runs one query or command and exits;
// serve and board keep running.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Track a learning roadmap with streaks and achievements",
	Long: `roadmap tracks your progress through a staged learning roadmap.
Complete tasks to keep a daily streak going and unlock achievements.
State lives in ~/.roadmap (override with ROADMAP_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

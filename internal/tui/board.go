// Package tui is the interactive roadmap board.
package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
)

// RunBoard runs the board until the user quits.
func RunBoard(ctx context.Context, t *tracker.Tracker, out io.Writer) error {
	m := newBoardModel(ctx, t)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

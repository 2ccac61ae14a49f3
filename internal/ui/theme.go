// Package ui holds the shared terminal styles for the CLI and the board.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

const (
	IconRoad   = "🛣️"
	IconFlame  = "🔥"
	IconTrophy = "🏆"
	IconDone   = "✅"
	IconTodo   = "⬜"
	IconStar   = "⭐"
	IconLock   = "🔒"
	IconWarn   = "⚠️"
	IconSearch = "🔎"
	IconCal    = "📅"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cPurple  = lipgloss.Color("135")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	Toast       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cGold).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold)
)

// Heading renders a title with an optional leading icon.
func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

// LabelValue renders "label: value" with a styled label.
func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Check renders a completion mark.
func Check(done bool) string {
	if done {
		return IconDone
	}
	return IconTodo
}

// Bar renders a percent as [=====>....] followed by the number.
func Bar(pct int, width int) string {
	if width < 3 {
		width = 3
	}
	pct = max(0, min(100, pct))
	filled := pct * width / 100

	var bar string
	switch {
	case filled == width:
		bar = strings.Repeat("=", width)
	case filled > 0:
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", width-filled)
	default:
		bar = strings.Repeat(".", width)
	}
	style := Muted
	switch {
	case pct == 100:
		style = Good
	case pct > 0:
		style = H2
	}
	return style.Render("["+bar+"]") + fmt.Sprintf(" %3d%%", pct)
}

// Rarity renders a rarity name in its colour.
func Rarity(r domain.Rarity) string {
	var c lipgloss.Color
	switch r {
	case domain.RarityUncommon:
		c = cGood
	case domain.RarityRare:
		c = cPrimary
	case domain.RarityEpic:
		c = cPurple
	case domain.RarityLegendary:
		c = cGold
	default:
		c = cMuted
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(r))
}

// Streak renders a streak count, warning when it is at risk.
func Streak(days int, atRisk bool) string {
	s := fmt.Sprintf("%s %d day", IconFlame, days)
	if days != 1 {
		s += "s"
	}
	switch {
	case atRisk:
		return Warn.Render(s + " (act today)")
	case days == 0:
		return Muted.Render(s)
	default:
		return Gold.Render(s)
	}
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/ui"
)

// pollEvery is how often the board re-reads the toast list, which the
// tracker clears on its own timer.
const pollEvery = 500 * time.Millisecond

type pane int

const (
	paneProjects pane = iota
	paneItems
)

type boardModel struct {
	ctx     context.Context
	tracker *tracker.Tracker

	width  int
	height int

	summary tracker.Summary
	streak  tracker.StreakView
	stages  []tracker.StageView
	project *tracker.ProjectView
	toast   []domain.Achievement

	focus      pane
	projectSel int
	itemSel    int
	lastLog    string
	loading    bool
	err        error
}

// projectLine is one selectable row of the left pane.
type projectLine struct {
	stage   string
	summary tracker.ProjectSummary
}

// itemLine is one selectable row of the right pane.
type itemLine struct {
	id        string
	title     string
	done      bool
	challenge bool
}

type loadedMsg struct {
	summary tracker.Summary
	streak  tracker.StreakView
	stages  []tracker.StageView
	project *tracker.ProjectView
	toast   []domain.Achievement
	err     error
}

type commandMsg struct {
	label string
	res   tracker.Result
	err   error
}

type tickMsg time.Time

func newBoardModel(ctx context.Context, t *tracker.Tracker) boardModel {
	return boardModel{
		ctx:     ctx,
		tracker: t,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) loadCmd() tea.Cmd {
	selected := m.selectedProjectID()
	return func() tea.Msg {
		msg := loadedMsg{
			summary: m.tracker.Summary(),
			streak:  m.tracker.StreakView(),
			stages:  m.tracker.Stages(),
			toast:   m.tracker.Notifications(),
		}
		if selected == "" && len(msg.stages) > 0 && len(msg.stages[0].Projects) > 0 {
			selected = msg.stages[0].Projects[0].ID
		}
		if selected != "" {
			pv, err := m.tracker.Project(selected)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.project = &pv
		}
		return msg
	}
}

func (m boardModel) toggleCmd(projectID string, it itemLine) tea.Cmd {
	return func() tea.Msg {
		var (
			res tracker.Result
			err error
		)
		if it.challenge {
			res, err = m.tracker.ToggleChallenge(m.ctx, projectID, it.id)
		} else {
			res, err = m.tracker.ToggleTask(m.ctx, projectID, it.id)
		}
		return commandMsg{label: it.title, res: res, err: err}
	}
}

func (m boardModel) startCmd(projectID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.tracker.StartProject(m.ctx, projectID)
		return commandMsg{label: "start " + projectID, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.toast = m.tracker.Notifications()
		return m, tick()
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.summary = msg.summary
		m.streak = msg.streak
		m.stages = msg.stages
		m.project = msg.project
		m.toast = msg.toast
		m.clampSelection()
		return m, nil
	case commandMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = describeResult(msg.label, msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case "d":
		m.tracker.DismissNotifications()
		m.toast = nil
		return m, nil
	case "tab", "left", "right", "h", "l":
		if m.focus == paneProjects {
			m.focus = paneItems
		} else {
			m.focus = paneProjects
		}
		return m, nil
	case "up", "k":
		if m.focus == paneProjects {
			if m.projectSel > 0 {
				m.projectSel--
				m.itemSel = 0
				return m, m.loadCmd()
			}
		} else if m.itemSel > 0 {
			m.itemSel--
		}
		return m, nil
	case "down", "j":
		if m.focus == paneProjects {
			if m.projectSel < len(m.projectLines())-1 {
				m.projectSel++
				m.itemSel = 0
				return m, m.loadCmd()
			}
		} else if m.itemSel < len(m.itemLines())-1 {
			m.itemSel++
		}
		return m, nil
	case "s":
		if id := m.selectedProjectID(); id != "" {
			return m, m.startCmd(id)
		}
		return m, nil
	case "enter", " ", "c":
		if m.focus != paneItems {
			m.focus = paneItems
			return m, nil
		}
		items := m.itemLines()
		if m.project == nil || m.itemSel < 0 || m.itemSel >= len(items) {
			return m, nil
		}
		return m, m.toggleCmd(m.project.ID, items[m.itemSel])
	}
	return m, nil
}

func describeResult(label string, res tracker.Result) string {
	if !res.Changed {
		return "Nothing changed."
	}
	var b strings.Builder
	switch {
	case res.Completed:
		fmt.Fprintf(&b, "Completed %q.", label)
	case strings.HasPrefix(label, "start "):
		b.WriteString("Project started.")
	default:
		fmt.Fprintf(&b, "Reopened %q.", label)
	}
	fmt.Fprintf(&b, " Streak %d.", res.Streak.CurrentStreak)
	if n := len(res.NewlyUnlocked); n > 0 {
		fmt.Fprintf(&b, " %s %d new achievement(s)!", ui.IconTrophy, n)
	}
	return b.String()
}

func (m boardModel) projectLines() []projectLine {
	var out []projectLine
	for _, st := range m.stages {
		for _, p := range st.Projects {
			out = append(out, projectLine{stage: st.Title, summary: p})
		}
	}
	return out
}

func (m boardModel) itemLines() []itemLine {
	if m.project == nil {
		return nil
	}
	var out []itemLine
	for _, it := range m.project.Tasks {
		out = append(out, itemLine{id: it.ID, title: it.Title, done: it.Completed})
	}
	for _, it := range m.project.Challenges {
		out = append(out, itemLine{id: it.ID, title: it.Title, done: it.Completed, challenge: true})
	}
	return out
}

func (m boardModel) selectedProjectID() string {
	lines := m.projectLines()
	if m.projectSel < 0 || m.projectSel >= len(lines) {
		return ""
	}
	return lines[m.projectSel].summary.ID
}

func (m *boardModel) clampSelection() {
	if n := len(m.projectLines()); m.projectSel >= n {
		m.projectSel = max(0, n-1)
	}
	if n := len(m.itemLines()); m.itemSel >= n {
		m.itemSel = max(0, n-1)
	}
}

// ─── View ───────────────────────────────────────────────────────────────────

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}
	if m.loading && m.stages == nil {
		return "Loading…\n"
	}

	left := m.renderProjects()
	right := m.renderProject()
	leftW := 38
	if m.width > 0 {
		leftW = max(24, min(leftW, m.width/2))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(leftW).Render(left),
		"  ",
		right,
	)

	parts := []string{m.renderHeader(), "", body}
	if toast := m.renderToast(); toast != "" {
		parts = append(parts, "", toast)
	}
	parts = append(parts, "", ui.Muted.Render(m.lastLog), m.renderKeys())
	return strings.Join(parts, "\n")
}

func (m boardModel) renderHeader() string {
	s := m.summary
	return fmt.Sprintf("%s  %s  %s  %s",
		ui.Heading(ui.IconRoad, "Roadmap"),
		ui.Bar(s.OverallPercent, 20),
		ui.Streak(m.streak.CurrentStreak, m.streak.AtRisk),
		ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", s.AchievementsUnlocked, s.AchievementsTotal)),
	)
}

func (m boardModel) renderProjects() string {
	var out []string
	stage := ""
	for i, pl := range m.projectLines() {
		if pl.stage != stage {
			if stage != "" {
				out = append(out, "")
			}
			stage = pl.stage
			out = append(out, ui.H2.Render(stage))
		}
		cursor := "  "
		row := fmt.Sprintf("%s %s %d/%d", ui.Check(pl.summary.Complete), pl.summary.Title, pl.summary.TasksCompleted, pl.summary.TotalTasks)
		if i == m.projectSel {
			cursor = "> "
			if m.focus == paneProjects {
				row = ui.SelectedRow.Render(row)
			}
		}
		out = append(out, cursor+row)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderProject() string {
	if m.project == nil {
		return ui.Muted.Render("Select a project.")
	}
	p := m.project
	out := []string{
		ui.H2.Render(p.Title) + "  " + ui.Bar(p.Percent, 12),
		ui.Muted.Render(p.Description),
		"",
		"Tasks",
	}
	items := m.itemLines()
	for i, it := range items {
		if it.challenge && (i == 0 || !items[i-1].challenge) {
			out = append(out, "", "Challenges")
		}
		cursor := "  "
		row := ui.Check(it.done) + " " + it.title
		if m.focus == paneItems && i == m.itemSel {
			cursor = "> "
			row = ui.SelectedRow.Render(row)
		}
		out = append(out, cursor+row)
	}
	if !p.Started {
		out = append(out, "", ui.Muted.Render("Not started. Press s to start."))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderToast() string {
	if len(m.toast) == 0 {
		return ""
	}
	lines := []string{ui.Gold.Render(ui.IconTrophy + " Achievement unlocked!")}
	for _, a := range m.toast {
		lines = append(lines, fmt.Sprintf("%s %s  %s", a.Icon, a.Name, ui.Rarity(a.Rarity)))
	}
	lines = append(lines, ui.Muted.Render("d to dismiss"))
	return ui.Toast.Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderKeys() string {
	return ui.Muted.Render("↑/↓ move · tab switch pane · space toggle · s start · d dismiss · r refresh · q quit")
}

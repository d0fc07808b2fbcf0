package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *timer.Engine
	userID string
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer    timerView
	groups   groupsModel
	activity activityModel
	reports  reportsModel
	settings settingsModel

	help     help.Model
	status   string
	greeting string // startup resume outcome, surfaced by announce
}

func NewApp(s *store.Store, slot timer.Slot, userID, displayName string) App {
	h := help.New()
	h.ShowAll = false

	groupID, err := s.GetSetting("current_group")
	if err != nil || groupID == "" {
		groupID = defaultGroupID
	}

	notes := &noteQueue{}
	engine := timer.New(userID, groupID, slot, s, s, timer.WithNotifier(notes))
	engine.SetDuration(s.GetSettingInt("default_duration", timer.DefaultDuration))

	// Resume before the program starts. Once Bubble Tea is running the
	// engine belongs to the update loop alone; commands run on their own
	// goroutines and must never touch it.
	resumed, finished := engine.Resume()

	a := App{
		store:      s,
		engine:     engine,
		userID:     userID,
		activeView: viewTimer,
		timer:      newTimerView(s, engine, notes),
		groups:     newGroupsModel(s, userID, displayName, groupID),
		activity:   newActivityModel(s, userID, groupID),
		reports:    newReportsModel(s, userID),
		settings:   newSettingsModel(s),
		help:       h,
	}
	switch {
	case resumed:
		a.timer.selector.SetDisabled(true)
		a.greeting = fmt.Sprintf("Resumed run — %s left", formatClock(engine.Remaining()))
	case finished:
		a.greeting = "A run finished while you were away — recorded"
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.announce(),
		tickCmd(),
	)
}

// announce reports this member's presence to the group and surfaces
// whatever the startup resume found. The engine is consulted before the
// closure is handed to the runtime.
func (a App) announce() tea.Cmd {
	s := a.store
	uid := a.userID
	presence := timer.PresenceOnline
	if a.engine.Running() {
		presence = timer.PresenceWorking
	}
	greeting := a.greeting
	return func() tea.Msg {
		s.SetStatus(uid, presence, time.Now())
		if greeting != "" {
			return statusMsg{text: greeting}
		}
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.groups.setSize(a.width, contentHeight)
		a.activity.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.store.SetStatus(a.userID, "offline", time.Now())
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewGroups
			return a, a.groups.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewActivity
			return a, a.activity.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks always reach the countdown, whichever tab is open.
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case sessionSavedMsg:
		verb := "stopped at"
		if msg.completed {
			verb = "completed"
		}
		a.status = fmt.Sprintf("Session %s %s", verb, formatMinutes(msg.minutes))
		var cmd tea.Cmd
		a.activity, cmd = a.activity.update(msg)
		return a, cmd

	case groupSelectedMsg:
		a.engine.SetGroup(msg.id)
		a.store.SetSetting("current_group", msg.id)
		a.status = "Recording into " + msg.name
		var cmd tea.Cmd
		a.activity, cmd = a.activity.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewGroups:
		a.groups, cmd = a.groups.update(msg)
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.formActive
	case viewGroups:
		return a.groups.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewGroups:
		return a.groups.refresh()
	case viewActivity:
		return a.activity.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewGroups:
		content = a.groups.view()
	case viewActivity:
		content = a.activity.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusflow")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer
	timerInfo := ""
	if a.engine.Running() {
		timerInfo = successStyle.Render(" ● " + formatClock(a.engine.Remaining()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	groupID := a.engine.GroupID()
	return func() tea.Msg {
		sessions, err := a.store.RecentSessions(groupID, 10000)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		// Build group lookup for readable names
		groups := make(map[string]*store.Group)
		glist, _ := a.store.ListGroups(a.userID)
		for i := range glist {
			groups[glist[i].ID] = &glist[i]
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("focusflow-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, groups, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("focusflow-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, groups, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

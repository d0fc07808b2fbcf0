package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

type activityModel struct {
	store   *store.Store
	userID  string
	groupID string
	width   int
	height  int

	leaderboard []store.LeaderboardRow
	summary     store.DailySummary
	statuses    []store.Status
	recent      []store.Session
}

func newActivityModel(s *store.Store, userID, groupID string) activityModel {
	return activityModel{store: s, userID: userID, groupID: groupID}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type activityDataMsg struct {
	leaderboard []store.LeaderboardRow
	summary     store.DailySummary
	statuses    []store.Status
	recent      []store.Session
}

func (a activityModel) refresh() tea.Cmd {
	gid := a.groupID
	uid := a.userID
	return func() tea.Msg {
		day := dayKey(time.Now())
		board, _ := a.store.DailyLeaderboard(gid, day)
		summary, _ := a.store.UserDailySummary(uid, day)
		statuses, _ := a.store.ListStatuses()
		recent, _ := a.store.RecentSessions(gid, 8)
		return activityDataMsg{
			leaderboard: board,
			summary:     summary,
			statuses:    statuses,
			recent:      recent,
		}
	}
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDataMsg:
		a.leaderboard = msg.leaderboard
		a.summary = msg.summary
		a.statuses = msg.statuses
		a.recent = msg.recent
		return a, nil
	case groupSelectedMsg:
		a.groupID = msg.id
		return a, a.refresh()
	case sessionSavedMsg:
		return a, a.refresh()
	}
	return a, nil
}

func (a activityModel) view() string {
	w := a.width - 4

	today := fmt.Sprintf("Today: %s across %d sessions (%d completed)",
		formatMinutes(a.summary.TotalMinutes), a.summary.Sessions, a.summary.Completed)

	var rows []string
	rows = append(rows, titleStyle.Render("Activity"))
	rows = append(rows, "")
	rows = append(rows, secondaryStyle.Render(today))
	rows = append(rows, "")

	rows = append(rows, a.renderLeaderboard()...)
	rows = append(rows, "")
	rows = append(rows, a.renderPresence()...)
	rows = append(rows, "")
	rows = append(rows, a.renderRecent()...)

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (a activityModel) renderLeaderboard() []string {
	rows := []string{accentStyle.Render("Daily Leaderboard")}
	if len(a.leaderboard) == 0 {
		return append(rows, mutedStyle.Render("  No sessions recorded today."))
	}
	for i, row := range a.leaderboard {
		name := row.DisplayName
		if name == "" {
			name = shortID(row.UserID)
		}
		style := normalItemStyle
		if row.UserID == a.userID {
			style = highlightStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("  %d. %-20s %8s  %d sessions",
			i+1, name, formatMinutes(row.TotalMinutes), row.Sessions)))
	}
	return rows
}

func (a activityModel) renderPresence() []string {
	rows := []string{accentStyle.Render("Who's Around")}
	if len(a.statuses) == 0 {
		return append(rows, mutedStyle.Render("  Nobody online."))
	}
	for _, s := range a.statuses {
		dot := mutedStyle.Render("○")
		if s.State == timer.PresenceWorking {
			dot = successStyle.Render("●")
		} else if s.State == timer.PresenceOnline {
			dot = secondaryStyle.Render("●")
		}
		rows = append(rows, normalItemStyle.Render(fmt.Sprintf("  %s %s (%s)", dot, shortID(s.UserID), s.State)))
	}
	return rows
}

func (a activityModel) renderRecent() []string {
	rows := []string{accentStyle.Render("Recent Sessions")}
	if len(a.recent) == 0 {
		return append(rows, mutedStyle.Render("  Nothing yet."))
	}
	for _, s := range a.recent {
		mark := warningStyle.Render("◌")
		if s.Completed {
			mark = successStyle.Render("✔")
		}
		rows = append(rows, normalItemStyle.Render(fmt.Sprintf("  %s %-10s %-16s %s",
			mark, shortID(s.UserID), s.Category, formatMinutes(s.Duration))))
	}
	return rows
}

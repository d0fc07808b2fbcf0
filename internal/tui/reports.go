package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/store"
)

type reportMode int

const (
	reportDays reportMode = iota
	reportCategories
)

var categoryColors = []string{"#00E5FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB", "#E74C3C"}

type reportsModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	mode       reportMode
	days       []store.DayTotal
	categories []store.CategoryTotal
	offset     int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(s *store.Store, userID string) reportsModel {
	return reportsModel{
		store:  s,
		userID: userID,
		chart:  barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days       []store.DayTotal
	categories []store.CategoryTotal
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		// The store range is [from, to) over day keys.
		from, to := r.dateRange()
		fromKey, toKey := dayKey(from), dayKey(to)
		days, _ := r.store.DailyTotals(r.userID, fromKey, toKey)
		categories, _ := r.store.CategoryTotals(r.userID, fromKey, toKey)
		return reportsDataMsg{days: days, categories: categories}
	}
}

// dateRange is a 7-day window ending today, shifted back by offset
// weeks. The week_start setting anchors the window to the configured
// weekday instead when set.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if ws, err := r.store.GetSetting("week_start"); err == nil && (ws == "monday" || ws == "sunday") {
		anchor := time.Monday
		if ws == "sunday" {
			anchor = time.Sunday
		}
		back := (int(today.Weekday()) - int(anchor) + 7) % 7
		start := today.AddDate(0, 0, -back-7*r.offset)
		return start, start.AddDate(0, 0, 7)
	}

	end := today.AddDate(0, 0, 1-7*r.offset)
	return end.AddDate(0, 0, -7), end
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.categories = msg.categories
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		// Tab cycles views at the app level and never reaches this
		// model; mode switching needs its own key.
		case key.Matches(msg, keys.Mode):
			if r.mode == reportDays {
				r.mode = reportCategories
			} else {
				r.mode = reportDays
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	totals := make(map[string]int, len(r.days))
	for _, d := range r.days {
		totals[d.DayKey] = d.TotalMinutes
	}

	from, to := r.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		minutes := totals[dayKey(d)]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "focus",
				Value: float64(minutes),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	daysTab := inactiveTabStyle.Render("Days")
	catTab := inactiveTabStyle.Render("Categories")
	if r.mode == reportDays {
		daysTab = activeTabStyle.Render("Days")
	} else {
		catTab = activeTabStyle.Render("Categories")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, daysTab, catTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	var body string
	if r.mode == reportDays {
		body = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderWeekSummary())
	} else {
		body = r.renderCategoryTable(w)
	}

	nav := mutedStyle.Render("  ←/→: navigate  m: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (r reportsModel) renderWeekSummary() string {
	total := 0
	for _, d := range r.days {
		total += d.TotalMinutes
	}
	if total == 0 {
		return mutedStyle.Render("  No focus time in this window")
	}
	return secondaryStyle.Render(fmt.Sprintf("  Total: %s over %d days", formatMinutes(total), len(r.days)))
}

func (r reportsModel) renderCategoryTable(w int) string {
	if len(r.categories) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-3s %-20s %10s %10s", "", "Category", "Time", "Sessions"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 48))))

	for i, c := range r.categories {
		dot := lipgloss.NewStyle().
			Foreground(lipgloss.Color(categoryColors[i%len(categoryColors)])).
			Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %10s %10d",
			dot, c.Category, formatMinutes(c.TotalMinutes), c.Sessions,
		))
	}

	return strings.Join(rows, "\n")
}

package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewGroups
	viewActivity
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Groups", "Activity", "Reports", "Settings"}

// defaultGroupID is the shared scratch group used before the user joins
// or creates a real one.
const defaultGroupID = "demo"

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type sessionSavedMsg struct {
	minutes   int
	completed bool
}

type groupSelectedMsg struct {
	id   string
	name string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders remaining seconds as MM:SS.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// shortID trims a UUID down to something readable in a table.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

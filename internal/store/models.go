package store

import "time"

type Group struct {
	ID         string
	Name       string
	InviteCode string
	CreatedBy  string
	CreatedAt  time.Time
}

type Member struct {
	GroupID     string
	UserID      string
	DisplayName string
	JoinedAt    time.Time
}

// Session is one row of the append-only ledger. Duration is elapsed
// minutes, not the nominal run length.
type Session struct {
	ID         int64
	GroupID    string
	UserID     string
	Category   string
	Duration   int
	DayKey     string
	Completed  bool
	RecordedAt time.Time
}

type Status struct {
	UserID    string
	State     string // online, working, offline
	ChangedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// LeaderboardRow is one user's total for a single day in a group.
type LeaderboardRow struct {
	UserID       string
	DisplayName  string
	TotalMinutes int
	Sessions     int
}

// DailySummary aggregates one user's day across all groups.
type DailySummary struct {
	TotalMinutes int
	Sessions     int
	Completed    int
}

// DayTotal is one bar of the weekly chart.
type DayTotal struct {
	DayKey       string
	TotalMinutes int
}

// CategoryTotal aggregates minutes per category over a date range.
type CategoryTotal struct {
	Category     string
	TotalMinutes int
	Sessions     int
}

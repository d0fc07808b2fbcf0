package store

import (
	"fmt"
	"time"

	"github.com/sadopc/focusflow/internal/timer"
)

// AppendSession appends one record to a group's ledger. It implements
// timer.Ledger. recorded_at is assigned by the database.
func (s *Store) AppendSession(groupID string, rec timer.SessionRecord) error {
	completed := 0
	if rec.Completed {
		completed = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (group_id, user_id, category, duration, day_key, completed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		groupID, rec.UserID, rec.Category, rec.DurationMinutes, rec.DayKey, completed,
	)
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

// DailyLeaderboard sums each member's minutes for one day in a group,
// highest first.
func (s *Store) DailyLeaderboard(groupID, dayKey string) ([]LeaderboardRow, error) {
	rows, err := s.db.Query(`
		SELECT se.user_id, COALESCE(m.display_name, ''), SUM(se.duration), COUNT(*)
		FROM sessions se
		LEFT JOIN group_members m ON m.group_id = se.group_id AND m.user_id = se.user_id
		WHERE se.group_id = ? AND se.day_key = ?
		GROUP BY se.user_id
		ORDER BY SUM(se.duration) DESC`,
		groupID, dayKey,
	)
	if err != nil {
		return nil, fmt.Errorf("daily leaderboard: %w", err)
	}
	defer rows.Close()

	var board []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.DisplayName, &r.TotalMinutes, &r.Sessions); err != nil {
			return nil, err
		}
		board = append(board, r)
	}
	return board, rows.Err()
}

// UserDailySummary totals one user's day across all groups.
func (s *Store) UserDailySummary(userID, dayKey string) (DailySummary, error) {
	var d DailySummary
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0), COUNT(*), COALESCE(SUM(completed), 0)
		FROM sessions
		WHERE user_id = ? AND day_key = ?`,
		userID, dayKey,
	).Scan(&d.TotalMinutes, &d.Sessions, &d.Completed)
	if err != nil {
		return DailySummary{}, fmt.Errorf("daily summary: %w", err)
	}
	return d, nil
}

// RecentSessions lists a group's latest ledger entries, newest first.
func (s *Store) RecentSessions(groupID string, limit int) ([]Session, error) {
	query := `SELECT id, group_id, user_id, category, duration, day_key, completed, recorded_at
	          FROM sessions WHERE group_id = ? ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var se Session
		var completed int
		var recordedAt string
		if err := rows.Scan(&se.ID, &se.GroupID, &se.UserID, &se.Category,
			&se.Duration, &se.DayKey, &completed, &recordedAt); err != nil {
			return nil, err
		}
		se.Completed = completed != 0
		se.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		sessions = append(sessions, se)
	}
	return sessions, rows.Err()
}

// DailyTotals buckets one user's minutes by day key over [from, to).
func (s *Store) DailyTotals(userID, fromKey, toKey string) ([]DayTotal, error) {
	rows, err := s.db.Query(`
		SELECT day_key, SUM(duration)
		FROM sessions
		WHERE user_id = ? AND day_key >= ? AND day_key < ?
		GROUP BY day_key
		ORDER BY day_key`,
		userID, fromKey, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DayTotal
	for rows.Next() {
		var dt DayTotal
		if err := rows.Scan(&dt.DayKey, &dt.TotalMinutes); err != nil {
			return nil, err
		}
		totals = append(totals, dt)
	}
	return totals, rows.Err()
}

// CategoryTotals aggregates one user's minutes per category over [from, to).
func (s *Store) CategoryTotals(userID, fromKey, toKey string) ([]CategoryTotal, error) {
	rows, err := s.db.Query(`
		SELECT category, SUM(duration), COUNT(*)
		FROM sessions
		WHERE user_id = ? AND day_key >= ? AND day_key < ?
		GROUP BY category
		ORDER BY SUM(duration) DESC`,
		userID, fromKey, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalMinutes, &ct.Sessions); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

package timer

import "time"

// Duration bounds for a run, in minutes.
const (
	MinDuration = 5
	MaxDuration = 60
)

// RunState is the persisted snapshot of an in-flight run. It exists only
// while the run is active; the single local slot is cleared on every
// return to idle.
type RunState struct {
	Running         bool   `json:"running"`
	StartedAt       int64  `json:"startedAt"` // Unix milliseconds
	EndsAt          int64  `json:"endsAt"`    // Unix milliseconds
	DurationMinutes int    `json:"durationMinutes"`
	Category        string `json:"category"`
	GroupID         string `json:"groupId"`
	OwnerID         string `json:"ownerId"`
}

// Valid reports whether a loaded snapshot is usable for resume. Anything
// malformed is treated the same as no snapshot at all.
func (rs RunState) Valid() bool {
	return rs.Running &&
		rs.OwnerID != "" &&
		rs.EndsAt > rs.StartedAt &&
		rs.DurationMinutes >= MinDuration && rs.DurationMinutes <= MaxDuration
}

// SessionRecord is one append-only row in a group's session ledger.
// DurationMinutes is elapsed time, not the nominal run length.
type SessionRecord struct {
	UserID          string
	Category        string
	GroupID         string
	DurationMinutes int
	DayKey          string // YYYY-MM-DD at record-creation time
	Completed       bool
}

// Ledger accepts session records. Writes are best-effort with respect to
// the engine: a failure never rolls back the local transition.
type Ledger interface {
	AppendSession(groupID string, rec SessionRecord) error
}

// Presence flips a user's externally visible working/online flag. One key
// per user, overwrite-only.
type Presence interface {
	SetStatus(userID, state string, changedAt time.Time) error
}

// Slot is the single-slot local storage that lets a run survive a process
// restart. Read once at startup, written on start, deleted on idle-entry.
type Slot interface {
	Get() (RunState, bool, error)
	Set(rs RunState) error
	Delete() error
}

// Notifier surfaces the natural-completion notification. Failures are the
// notifier's problem; the engine never checks.
type Notifier interface {
	Notify(title, body string)
}

// ClampDuration clamps a candidate duration to the valid range.
func ClampDuration(minutes int) int {
	if minutes < MinDuration {
		return MinDuration
	}
	if minutes > MaxDuration {
		return MaxDuration
	}
	return minutes
}

// RemainingSeconds computes whole seconds left until endsAt, rounded up,
// never negative. Remaining time is a pure function of (endsAt, now) so a
// delayed or skipped tick self-corrects on the next one.
func RemainingSeconds(endsAt, now time.Time) int {
	ms := endsAt.Sub(now).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// ElapsedMinutes converts remaining seconds at stop time into elapsed
// whole minutes, rounded up.
func ElapsedMinutes(durationMinutes, remainingAtStop int) int {
	elapsed := durationMinutes*60 - remainingAtStop
	if elapsed <= 0 {
		return 0
	}
	return (elapsed + 59) / 60
}

// Package timer implements the countdown engine: an Idle/Running state
// machine anchored to wall-clock timestamps so that suspension,
// backgrounding, and process restarts never cause drift.
package timer

import (
	"fmt"
	"log"
	"time"

	"github.com/sadopc/focusflow/internal/sanitize"
)

// Presence states written around a run.
const (
	PresenceOnline  = "online"
	PresenceWorking = "working"
)

// DefaultDuration is the initial run length before the user touches the
// selector.
const DefaultDuration = 25

type Status int

const (
	StatusIdle Status = iota
	StatusRunning
)

// Engine owns one user's countdown. It is not a process-wide singleton;
// the view that created it holds the only reference. All methods are
// meant for a single goroutine (the Bubble Tea update loop).
type Engine struct {
	slot     Slot
	ledger   Ledger
	presence Presence
	notifier Notifier
	now      func() time.Time

	ownerID string
	groupID string

	status    Status
	duration  int // minutes
	category  string
	startedAt time.Time
	endsAt    time.Time
	remaining int // seconds, recomputed every tick
}

type Option func(*Engine)

// WithClock replaces the time source, used to make the transition laws
// deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNotifier sets the surface invoked on natural completion.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func New(ownerID, groupID string, slot Slot, ledger Ledger, presence Presence, opts ...Option) *Engine {
	e := &Engine{
		slot:     slot,
		ledger:   ledger,
		presence: presence,
		now:      time.Now,
		ownerID:  ownerID,
		groupID:  groupID,
		status:   StatusIdle,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.remaining = e.duration * 60
	return e
}

func (e *Engine) Running() bool   { return e.status == StatusRunning }
func (e *Engine) Status() Status  { return e.status }
func (e *Engine) Duration() int   { return e.duration }
func (e *Engine) Remaining() int  { return e.remaining }
func (e *Engine) Category() string { return e.category }
func (e *Engine) GroupID() string { return e.groupID }

// Progress is the completed fraction of the current run, 0..1.
func (e *Engine) Progress() float64 {
	total := e.duration * 60
	if total == 0 {
		return 0
	}
	return float64(total-e.remaining) / float64(total)
}

// SetDuration updates the run length. Rejected while running; once a run
// has started its end time is fixed.
func (e *Engine) SetDuration(minutes int) {
	if e.status == StatusRunning {
		return
	}
	e.duration = ClampDuration(minutes)
	e.remaining = e.duration * 60
}

// SetCategory sets the sanitized category tag. Rejected while running.
func (e *Engine) SetCategory(category string) {
	if e.status == StatusRunning {
		return
	}
	e.category = sanitize.Category(category)
}

// SetGroup changes the destination ledger. Rejected while running.
func (e *Engine) SetGroup(groupID string) {
	if e.status == StatusRunning {
		return
	}
	e.groupID = groupID
}

// Start begins a run. A missing identity, an empty category, or an
// already-running engine make it a silent no-op; the running flag is the
// mutual-exclusion latch. Returns whether a run actually started.
func (e *Engine) Start() bool {
	if e.status == StatusRunning || e.ownerID == "" || e.category == "" {
		return false
	}

	e.startedAt = e.now()
	e.endsAt = e.startedAt.Add(time.Duration(e.duration) * time.Minute)
	e.remaining = e.duration * 60
	e.status = StatusRunning

	if err := e.slot.Set(e.snapshot()); err != nil {
		log.Printf("timer: persist run state: %v", err)
	}
	e.setPresence(PresenceWorking)
	return true
}

// Tick recomputes remaining time from absolute timestamps. When the end
// time has passed it performs the completion transition. Returns whether
// the run just completed.
func (e *Engine) Tick() bool {
	if e.status != StatusRunning {
		return false
	}
	e.remaining = RemainingSeconds(e.endsAt, e.now())
	if e.remaining > 0 {
		return false
	}
	e.finish(0, false, true)
	return true
}

// Stop terminates the run. With cancel=false a session is recorded when
// at least one minute elapsed; with cancel=true nothing is ever recorded.
// Returns the record that was appended, or nil.
func (e *Engine) Stop(cancel bool) *SessionRecord {
	if e.status != StatusRunning {
		return nil
	}
	remaining := RemainingSeconds(e.endsAt, e.now())
	return e.finish(remaining, cancel, false)
}

// Resume restores a persisted run at startup. The slot is read exactly
// once; after that the in-memory engine is authoritative. A snapshot for
// a different owner, or a malformed one, is discarded. A snapshot whose
// deadline already passed is completed as if the tick had fired at the
// missed boundary. Returns (resumed, completed).
func (e *Engine) Resume() (bool, bool) {
	rs, ok, err := e.slot.Get()
	if err != nil {
		log.Printf("timer: read run state: %v", err)
		return false, false
	}
	if !ok {
		return false, false
	}
	if !rs.Valid() || rs.OwnerID != e.ownerID {
		if err := e.slot.Delete(); err != nil {
			log.Printf("timer: discard run state: %v", err)
		}
		return false, false
	}

	e.duration = rs.DurationMinutes
	e.category = rs.Category
	e.groupID = rs.GroupID
	e.startedAt = time.UnixMilli(rs.StartedAt)
	e.endsAt = time.UnixMilli(rs.EndsAt)
	e.status = StatusRunning

	e.remaining = RemainingSeconds(e.endsAt, e.now())
	if e.remaining > 0 {
		// Continuation of the same run: no record, no presence write.
		return true, false
	}
	e.finish(0, false, true)
	return false, true
}

// finish is the single Running→Idle transition. remainingAtStop is 0 for
// natural completion; natural additionally fires the notification.
func (e *Engine) finish(remainingAtStop int, cancel, natural bool) *SessionRecord {
	completed := remainingAtStop == 0 && !cancel
	elapsedSeconds := e.duration*60 - remainingAtStop
	elapsed := ElapsedMinutes(e.duration, remainingAtStop)

	// A run shorter than one full minute leaves no trace; anything longer
	// is rounded up to whole minutes.
	var rec *SessionRecord
	if !cancel && elapsedSeconds >= 60 {
		rec = &SessionRecord{
			UserID:          e.ownerID,
			Category:        e.category,
			GroupID:         e.groupID,
			DurationMinutes: elapsed,
			DayKey:          e.now().UTC().Format("2006-01-02"),
			Completed:       completed,
		}
		if err := e.ledger.AppendSession(e.groupID, *rec); err != nil {
			// The run has already ended locally; the write is
			// at-least-once best-effort.
			log.Printf("timer: append session: %v", err)
		}
	}

	if natural && e.notifier != nil {
		e.notifier.Notify("Focus session complete",
			fmt.Sprintf("%s finished after %d min", e.category, elapsed))
	}

	e.setPresence(PresenceOnline)
	if err := e.slot.Delete(); err != nil {
		log.Printf("timer: clear run state: %v", err)
	}

	// Idle again: keep the duration that was just used, drop the category.
	e.status = StatusIdle
	e.category = ""
	e.remaining = e.duration * 60
	return rec
}

func (e *Engine) setPresence(state string) {
	if e.presence == nil {
		return
	}
	if err := e.presence.SetStatus(e.ownerID, state, e.now()); err != nil {
		log.Printf("timer: set presence %s: %v", state, err)
	}
}

func (e *Engine) snapshot() RunState {
	return RunState{
		Running:         true,
		StartedAt:       e.startedAt.UnixMilli(),
		EndsAt:          e.endsAt.UnixMilli(),
		DurationMinutes: e.duration,
		Category:        e.category,
		GroupID:         e.groupID,
		OwnerID:         e.ownerID,
	}
}

package timer

import (
	"errors"
	"testing"
	"time"
)

// ============================================================
// Test doubles
// ============================================================

type fakeSlot struct {
	rs      RunState
	ok      bool
	getErr  error
	setErr  error
	sets    int
	deletes int
}

func (f *fakeSlot) Get() (RunState, bool, error) { return f.rs, f.ok, f.getErr }

func (f *fakeSlot) Set(rs RunState) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.rs = rs
	f.ok = true
	return nil
}

func (f *fakeSlot) Delete() error {
	f.deletes++
	f.ok = false
	return nil
}

type fakeLedger struct {
	records []SessionRecord
	err     error
}

func (f *fakeLedger) AppendSession(groupID string, rec SessionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakePresence struct {
	writes []string // "userID/state"
	err    error
}

func (f *fakePresence) SetStatus(userID, state string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, userID+"/"+state)
	return nil
}

type fakeNotifier struct {
	titles []string
	bodies []string
}

func (f *fakeNotifier) Notify(title, body string) {
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type engineFixture struct {
	engine   *Engine
	slot     *fakeSlot
	ledger   *fakeLedger
	presence *fakePresence
	notifier *fakeNotifier
	clock    *testClock
}

func newEngine(t *testing.T, owner string) *engineFixture {
	t.Helper()
	f := &engineFixture{
		slot:     &fakeSlot{},
		ledger:   &fakeLedger{},
		presence: &fakePresence{},
		notifier: &fakeNotifier{},
		clock:    &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.engine = New(owner, "g1", f.slot, f.ledger, f.presence,
		WithClock(f.clock.Now), WithNotifier(f.notifier))
	return f
}

// ============================================================
// Start
// ============================================================

func TestStartGuards(t *testing.T) {
	f := newEngine(t, "u1")

	// No category set yet.
	if f.engine.Start() {
		t.Fatal("start without category should be rejected")
	}

	f.engine.SetCategory("math")
	if !f.engine.Start() {
		t.Fatal("start should succeed")
	}
	if !f.engine.Running() {
		t.Fatal("engine should be running")
	}
	if f.slot.sets != 1 {
		t.Fatalf("expected 1 slot write, got %d", f.slot.sets)
	}
}

func TestStartWithoutIdentity(t *testing.T) {
	f := newEngine(t, "")
	f.engine.SetCategory("math")
	if f.engine.Start() {
		t.Fatal("start without identity should be rejected")
	}
}

func TestStartIdempotentWhileRunning(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(30)
	f.engine.SetCategory("math")
	f.engine.Start()

	startedAt := f.engine.startedAt
	endsAt := f.engine.endsAt

	f.clock.Advance(2 * time.Minute)
	if f.engine.Start() {
		t.Fatal("second start should be a no-op")
	}
	if !f.engine.startedAt.Equal(startedAt) || !f.engine.endsAt.Equal(endsAt) {
		t.Fatal("second start must not change run timestamps")
	}
	if f.engine.Duration() != 30 || f.engine.Category() != "math" {
		t.Fatal("second start must not change duration or category")
	}
	if f.slot.sets != 1 {
		t.Fatalf("expected 1 slot write, got %d", f.slot.sets)
	}
}

// ============================================================
// Duration and category guards
// ============================================================

func TestSetDurationClampsAndGuards(t *testing.T) {
	f := newEngine(t, "u1")

	f.engine.SetDuration(3)
	if f.engine.Duration() != MinDuration {
		t.Fatalf("expected clamp to %d, got %d", MinDuration, f.engine.Duration())
	}
	f.engine.SetDuration(90)
	if f.engine.Duration() != MaxDuration {
		t.Fatalf("expected clamp to %d, got %d", MaxDuration, f.engine.Duration())
	}

	f.engine.SetDuration(25)
	f.engine.SetCategory("math")
	f.engine.Start()
	endsAt := f.engine.endsAt

	f.engine.SetDuration(50)
	if f.engine.Duration() != 25 {
		t.Fatal("duration must be immutable while running")
	}
	if !f.engine.endsAt.Equal(endsAt) {
		t.Fatal("endsAt must never be recomputed once running")
	}

	f.engine.SetCategory("other")
	if f.engine.Category() != "math" {
		t.Fatal("category must be immutable while running")
	}
}

// ============================================================
// Ticking
// ============================================================

func TestTickIsWallClockAnchored(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(10)
	f.engine.SetCategory("math")
	f.engine.Start()

	// Simulate the device sleeping through 7 minutes of ticks: a single
	// late tick must land on the right value.
	f.clock.Advance(7 * time.Minute)
	if f.engine.Tick() {
		t.Fatal("run should not be complete")
	}
	if f.engine.Remaining() != 3*60 {
		t.Fatalf("expected 180s remaining, got %d", f.engine.Remaining())
	}
}

func TestRemainingIsPureFunction(t *testing.T) {
	endsAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := endsAt.Add(-90 * time.Second)

	a := RemainingSeconds(endsAt, now)
	b := RemainingSeconds(endsAt, now)
	if a != b || a != 90 {
		t.Fatalf("expected 90, got %d and %d", a, b)
	}

	// Sub-second remainders round up.
	if got := RemainingSeconds(endsAt, endsAt.Add(-300*time.Millisecond)); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := RemainingSeconds(endsAt, endsAt.Add(time.Hour)); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestAutoTermination(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(25)
	f.engine.SetCategory("math")
	f.engine.Start()

	f.clock.Advance(25 * time.Minute)
	if !f.engine.Tick() {
		t.Fatal("tick at the deadline should complete the run")
	}
	if f.engine.Running() {
		t.Fatal("engine should be idle after completion")
	}
	if len(f.ledger.records) != 1 {
		t.Fatalf("expected 1 session, got %d", len(f.ledger.records))
	}
	rec := f.ledger.records[0]
	if rec.DurationMinutes != 25 || !rec.Completed {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.DayKey != "2025-06-01" {
		t.Fatalf("unexpected day key %q", rec.DayKey)
	}
	if len(f.notifier.titles) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.titles))
	}
	if f.slot.deletes != 1 {
		t.Fatal("slot should be cleared on completion")
	}
	if f.engine.Category() != "" {
		t.Fatal("category should be cleared on idle-entry")
	}
	if f.engine.Duration() != 25 {
		t.Fatal("duration should stay at the value just used")
	}
}

// ============================================================
// Stop
// ============================================================

func TestStopBeforeOneMinuteRecordsNothing(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(25)
	f.engine.SetCategory("math")
	f.engine.Start()

	f.clock.Advance(30 * time.Second)
	if rec := f.engine.Stop(false); rec != nil {
		t.Fatalf("expected no record, got %+v", rec)
	}
	if len(f.ledger.records) != 0 {
		t.Fatal("ledger should be empty")
	}
	if f.engine.Running() {
		t.Fatal("engine should be idle")
	}
}

func TestStopAfterElapsedRecordsPartialSession(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(10)
	f.engine.SetCategory("reading")
	f.engine.Start()

	f.clock.Advance(3 * time.Minute)
	rec := f.engine.Stop(false)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.DurationMinutes != 3 {
		t.Fatalf("expected 3 elapsed minutes, got %d", rec.DurationMinutes)
	}
	if rec.Completed {
		t.Fatal("partial stop must not be completed")
	}
	if rec.Category != "reading" || rec.GroupID != "g1" || rec.UserID != "u1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(f.notifier.titles) != 0 {
		t.Fatal("explicit stop must not notify")
	}
}

func TestCancelNeverRecords(t *testing.T) {
	f := newEngine(t, "u1")
	f.engine.SetDuration(10)
	f.engine.SetCategory("math")
	f.engine.Start()

	f.clock.Advance(8 * time.Minute)
	if rec := f.engine.Stop(true); rec != nil {
		t.Fatalf("cancel must never record, got %+v", rec)
	}
	if len(f.ledger.records) != 0 {
		t.Fatal("ledger should be empty after cancel")
	}
	if f.slot.deletes != 1 {
		t.Fatal("slot should still be cleared")
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	f := newEngine(t, "u1")
	if rec := f.engine.Stop(false); rec != nil {
		t.Fatal("stop while idle should be a no-op")
	}
	if len(f.presence.writes) != 0 {
		t.Fatal("no presence writes expected")
	}
}

// ============================================================
// Presence ordering
// ============================================================

func TestPresenceBracketsEveryRun(t *testing.T) {
	f := newEngine(t, "u1")

	for i := 0; i < 3; i++ {
		f.engine.SetCategory("math")
		f.engine.Start()
		f.clock.Advance(90 * time.Second)
		f.engine.Stop(false)
	}

	want := []string{
		"u1/working", "u1/online",
		"u1/working", "u1/online",
		"u1/working", "u1/online",
	}
	if len(f.presence.writes) != len(want) {
		t.Fatalf("expected %d writes, got %v", len(want), f.presence.writes)
	}
	for i, w := range want {
		if f.presence.writes[i] != w {
			t.Fatalf("write %d: expected %s, got %s", i, w, f.presence.writes[i])
		}
	}
}

// ============================================================
// Resume
// ============================================================

func TestResumeMidRun(t *testing.T) {
	f := newEngine(t, "u1")
	now := f.clock.Now()
	f.slot.rs = RunState{
		Running:         true,
		StartedAt:       now.Add(-9 * time.Minute).UnixMilli(),
		EndsAt:          now.Add(time.Minute).UnixMilli(),
		DurationMinutes: 10,
		Category:        "math",
		GroupID:         "g1",
		OwnerID:         "u1",
	}
	f.slot.ok = true

	resumed, completed := f.engine.Resume()
	if !resumed || completed {
		t.Fatalf("expected resume, got resumed=%v completed=%v", resumed, completed)
	}
	if !f.engine.Running() {
		t.Fatal("engine should be running")
	}
	if f.engine.Remaining() != 60 {
		t.Fatalf("expected 60s remaining, got %d", f.engine.Remaining())
	}
	if len(f.ledger.records) != 0 {
		t.Fatal("resume must not record a session")
	}
	if len(f.presence.writes) != 0 {
		t.Fatal("resume is a continuation, not a new run: no presence write")
	}
}

func TestResumePastDeadline(t *testing.T) {
	f := newEngine(t, "u1")
	now := f.clock.Now()
	f.slot.rs = RunState{
		Running:         true,
		StartedAt:       now.Add(-30 * time.Minute).UnixMilli(),
		EndsAt:          now.Add(-5 * time.Minute).UnixMilli(),
		DurationMinutes: 25,
		Category:        "math",
		GroupID:         "g1",
		OwnerID:         "u1",
	}
	f.slot.ok = true

	resumed, completed := f.engine.Resume()
	if resumed || !completed {
		t.Fatalf("expected completion, got resumed=%v completed=%v", resumed, completed)
	}
	if f.engine.Running() {
		t.Fatal("engine should be idle")
	}
	if len(f.ledger.records) != 1 {
		t.Fatalf("expected 1 session, got %d", len(f.ledger.records))
	}
	rec := f.ledger.records[0]
	if rec.DurationMinutes != 25 || !rec.Completed {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if f.slot.deletes != 1 {
		t.Fatal("slot should be cleared")
	}
}

func TestResumeRejectsOtherOwner(t *testing.T) {
	f := newEngine(t, "u1")
	now := f.clock.Now()
	f.slot.rs = RunState{
		Running:         true,
		StartedAt:       now.UnixMilli(),
		EndsAt:          now.Add(10 * time.Minute).UnixMilli(),
		DurationMinutes: 10,
		Category:        "math",
		GroupID:         "g1",
		OwnerID:         "somebody-else",
	}
	f.slot.ok = true

	resumed, completed := f.engine.Resume()
	if resumed || completed {
		t.Fatal("foreign run state must never be resumed")
	}
	if f.slot.deletes != 1 {
		t.Fatal("foreign run state should be discarded")
	}
}

func TestResumeRejectsInvalidState(t *testing.T) {
	f := newEngine(t, "u1")
	f.slot.rs = RunState{Running: true, OwnerID: "u1"} // zero timestamps
	f.slot.ok = true

	if resumed, _ := f.engine.Resume(); resumed {
		t.Fatal("invalid run state must not resume")
	}
	if f.slot.deletes != 1 {
		t.Fatal("invalid run state should be cleared")
	}
}

func TestResumeWithEmptySlot(t *testing.T) {
	f := newEngine(t, "u1")
	if resumed, completed := f.engine.Resume(); resumed || completed {
		t.Fatal("empty slot should leave the engine idle")
	}
}

// ============================================================
// Failure isolation
// ============================================================

func TestLedgerFailureDoesNotBlockTransition(t *testing.T) {
	f := newEngine(t, "u1")
	f.ledger.err = errors.New("ledger down")
	f.engine.SetDuration(10)
	f.engine.SetCategory("math")
	f.engine.Start()

	f.clock.Advance(10 * time.Minute)
	f.engine.Tick()

	if f.engine.Running() {
		t.Fatal("engine must reach idle despite a failed write")
	}
	if f.slot.deletes != 1 {
		t.Fatal("slot must still be cleared")
	}
}

func TestPresenceFailureDoesNotBlockStart(t *testing.T) {
	f := newEngine(t, "u1")
	f.presence.err = errors.New("presence down")
	f.engine.SetCategory("math")
	if !f.engine.Start() {
		t.Fatal("start must succeed despite a failed presence write")
	}
}

// ============================================================
// Elapsed computation
// ============================================================

func TestElapsedMinutes(t *testing.T) {
	tests := []struct {
		duration, remaining, want int
	}{
		{25, 0, 25},       // natural completion
		{10, 420, 3},      // 3 minutes elapsed
		{25, 25*60 - 30, 1}, // 30s elapsed rounds up
		{25, 25 * 60, 0},  // nothing elapsed
		{5, 1, 5},         // 4m59s rounds up to 5
	}
	for _, tt := range tests {
		if got := ElapsedMinutes(tt.duration, tt.remaining); got != tt.want {
			t.Errorf("ElapsedMinutes(%d, %d) = %d, want %d",
				tt.duration, tt.remaining, got, tt.want)
		}
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/sanitize"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

// noteQueue implements timer.Notifier. The engine pushes completion
// notices during Tick; the update loop drains them into the status bar.
type noteQueue struct {
	notes []string
}

func (n *noteQueue) Notify(title, body string) {
	n.notes = append(n.notes, title+" — "+body)
}

func (n *noteQueue) drain() []string {
	out := n.notes
	n.notes = nil
	return out
}

// pulseCounter collects selector feedback pulses. The selector fires it
// once per net minute-boundary crossing; the update loop drains the
// count into bell rings.
type pulseCounter struct {
	n int
}

func (p *pulseCounter) pulse() { p.n++ }

func (p *pulseCounter) drain() int {
	n := p.n
	p.n = 0
	return n
}

type timerView struct {
	store  *store.Store
	engine *timer.Engine
	notes  *noteQueue
	width  int
	height int

	selector *timer.Selector
	pulses   *pulseCounter
	swipe    bool // SwipePixelsPerStep units instead of dial degrees
	soundOn  bool

	formActive bool
	form       *huh.Form
	category   *string
}

func newTimerView(s *store.Store, engine *timer.Engine, notes *noteQueue) timerView {
	cat := ""
	v := timerView{
		store:    s,
		engine:   engine,
		notes:    notes,
		category: &cat,
		pulses:   &pulseCounter{},
		soundOn:  s.GetSettingInt("sound", 1) == 1,
	}
	// The dial and the vertical swipe are alternative mappings of the
	// same control; settings pick which one the arrow keys drive.
	var strategy timer.StepStrategy = timer.NewDial()
	if style, err := s.GetSetting("selector"); err == nil && style == "swipe" {
		strategy = timer.NewSwipe()
		v.swipe = true
	}
	v.selector = timer.NewSelector(engine.Duration(), strategy, v.pulses.pulse)
	return v
}

// stepDelta is one key press worth of raw input in the active
// strategy's units. A swipe "up" is a negative pixel delta.
func (t timerView) stepDelta() float64 {
	if t.swipe {
		return -timer.SwipePixelsPerStep
	}
	return timer.DialDegreesPerStep
}

func (t *timerView) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerView) update(msg tea.Msg) (timerView, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		return t.handleTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			return t.startRun()
		case key.Matches(msg, keys.Stop):
			return t.stopRun(false)
		case key.Matches(msg, keys.Discard):
			return t.stopRun(true)
		case key.Matches(msg, keys.Category):
			if t.engine.Running() {
				return t, nil
			}
			return t.showCategoryForm()
		case key.Matches(msg, keys.Right):
			return t.turn(1)
		case key.Matches(msg, keys.Left):
			return t.turn(-1)
		case key.Matches(msg, keys.Up):
			return t.turn(5)
		case key.Matches(msg, keys.Down):
			return t.turn(-5)
		}
	}
	return t, nil
}

func (t timerView) handleTick() (timerView, tea.Cmd) {
	if !t.engine.Running() {
		return t, nil
	}
	completed := t.engine.Tick()
	if !completed {
		return t, nil
	}

	t.selector.SetDisabled(false)
	t.selector.SetValue(t.engine.Duration())

	text := strings.Join(t.notes.drain(), "  ")
	if text == "" {
		text = "Session complete"
	}
	cmds := []tea.Cmd{func() tea.Msg { return statusMsg{text: text} }}
	if t.soundOn {
		cmds = append(cmds, bell)
	}
	return t, tea.Batch(cmds...)
}

// bell rings the terminal bell, the closest thing a TUI has to a
// haptic pulse.
func bell() tea.Msg {
	fmt.Print("\a")
	return nil
}

func ringBells(n int) tea.Cmd {
	return func() tea.Msg {
		fmt.Print(strings.Repeat("\a", n))
		return nil
	}
}

// turn feeds one key press into the selector and pushes the result into
// the engine. Input is rejected while a run is active. A fast turn that
// crosses several minute boundaries rings once per crossing, not once
// per key press.
func (t timerView) turn(steps int) (timerView, tea.Cmd) {
	if t.engine.Running() {
		return t, nil
	}
	before := t.selector.Value()
	after := t.selector.Apply(float64(steps) * t.stepDelta())
	crossings := t.pulses.drain()
	if after == before {
		return t, nil
	}
	t.engine.SetDuration(after)
	if t.soundOn && crossings > 0 {
		return t, ringBells(crossings)
	}
	return t, nil
}

func (t timerView) startRun() (timerView, tea.Cmd) {
	if t.engine.Running() {
		return t, nil
	}
	t.engine.SetDuration(t.selector.Value())
	t.engine.SetCategory(*t.category)
	if t.engine.Category() == "" {
		return t, func() tea.Msg {
			return statusMsg{text: "Set a category first (press c)", isError: true}
		}
	}
	if !t.engine.Start() {
		return t, func() tea.Msg {
			return statusMsg{text: "Could not start the timer", isError: true}
		}
	}
	t.selector.SetDisabled(true)
	return t, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Focusing on %s for %d min", t.engine.Category(), t.engine.Duration())}
	}
}

func (t timerView) stopRun(cancel bool) (timerView, tea.Cmd) {
	if !t.engine.Running() {
		return t, nil
	}
	rec := t.engine.Stop(cancel)
	t.selector.SetDisabled(false)
	t.selector.SetValue(t.engine.Duration())
	*t.category = ""

	switch {
	case cancel:
		return t, func() tea.Msg { return statusMsg{text: "Run discarded"} }
	case rec != nil:
		minutes := rec.DurationMinutes
		return t, func() tea.Msg {
			return sessionSavedMsg{minutes: minutes, completed: rec.Completed}
		}
	default:
		return t, func() tea.Msg {
			return statusMsg{text: "Stopped before one minute — nothing recorded"}
		}
	}
}

func (t timerView) showCategoryForm() (timerView, tea.Cmd) {
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category").
				Description("What are you focusing on?").
				Value(t.category),
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t timerView) updateForm(msg tea.Msg) (timerView, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		*t.category = sanitize.Category(*t.category)
		t.form = nil
	}
	return t, cmd
}

func (t timerView) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render("Category"), "", t.form.View()),
		)
	}

	title := titleStyle.Render("Focus Timer")

	var clock, label string
	if t.engine.Running() {
		clock = clockStyle.Width(w - 6).Render(formatClock(t.engine.Remaining()))
		label = secondaryStyle.Render("Focusing on " + t.engine.Category())
	} else {
		clock = mutedStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).
			Render(formatClock(t.selector.Value() * 60))
		cat := *t.category
		if cat == "" {
			cat = "no category yet"
		}
		label = mutedStyle.Render(fmt.Sprintf("%d min · %s", t.selector.Value(), cat))
	}

	var hint string
	if t.engine.Running() {
		hint = mutedStyle.Render("x: stop  d: discard")
	} else {
		hint = mutedStyle.Render("←/→ adjust  ↑/↓ fast  c: category  s: start")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		clock,
		label,
		"",
		t.renderProgress(w-10),
		"",
		hint,
	)

	return panelStyle.Width(w).Render(content)
}

func (t timerView) renderProgress(width int) string {
	if width < 10 {
		width = 10
	}
	filled := 0
	if t.engine.Running() {
		filled = int(t.engine.Progress() * float64(width))
	}
	if filled > width {
		filled = width
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar
}

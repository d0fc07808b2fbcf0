package timer

import "math"

// Default sensitivities for the two selector strategies. The dial on the
// timer face is deliberately coarse; the fine dial in the picker overlay
// and the vertical swipe are more sensitive.
const (
	DialDegreesPerStep     = 15.0
	FineDialDegreesPerStep = 6.0
	SwipePixelsPerStep     = 12.0
)

// StepStrategy turns a continuous input delta into a whole number of
// one-minute steps. Implementations accumulate sub-step residue so slow
// gestures still register.
type StepStrategy interface {
	Steps(delta float64) int
}

// Dial maps angular drag to steps. Deltas are normalized across the
// 0/360 wrap so a gesture passing twelve o'clock does not jump.
type Dial struct {
	DegreesPerStep float64
	acc            float64
}

func NewDial() *Dial {
	return &Dial{DegreesPerStep: DialDegreesPerStep}
}

func NewFineDial() *Dial {
	return &Dial{DegreesPerStep: FineDialDegreesPerStep}
}

func (d *Dial) Steps(delta float64) int {
	for delta > 180 {
		delta -= 360
	}
	for delta < -180 {
		delta += 360
	}
	d.acc += delta
	steps := int(math.Round(d.acc / d.DegreesPerStep))
	if steps != 0 {
		d.acc -= float64(steps) * d.DegreesPerStep
	}
	return steps
}

// Swipe maps vertical drag to steps; upward motion (negative dy)
// increases the value.
type Swipe struct {
	PixelsPerStep float64
	acc           float64
}

func NewSwipe() *Swipe {
	return &Swipe{PixelsPerStep: SwipePixelsPerStep}
}

func (s *Swipe) Steps(delta float64) int {
	s.acc += -delta
	steps := int(math.Round(s.acc / s.PixelsPerStep))
	if steps != 0 {
		s.acc -= float64(steps) * s.PixelsPerStep
	}
	return steps
}

// FeedbackFunc is one tactile/audible pulse. It fires once per net
// one-minute boundary crossing, never per raw input event.
type FeedbackFunc func()

// Selector converts drag input into a clamped duration. While the engine
// is running the selector is disabled and all input is a no-op.
type Selector struct {
	strategy StepStrategy
	feedback FeedbackFunc
	value    int
	disabled bool
}

func NewSelector(initial int, strategy StepStrategy, feedback FeedbackFunc) *Selector {
	return &Selector{
		strategy: strategy,
		feedback: feedback,
		value:    ClampDuration(initial),
	}
}

func (s *Selector) Value() int { return s.value }

// SetValue resets the selector, e.g. after a run ends with a different
// duration than the selector last produced.
func (s *Selector) SetValue(minutes int) {
	s.value = ClampDuration(minutes)
}

// SetDisabled gates input while a run is active.
func (s *Selector) SetDisabled(disabled bool) {
	s.disabled = disabled
}

// Apply folds one input delta into the selection and returns the current
// value. A zero delta never changes anything. Clamping at a boundary
// produces no feedback when the value is left unchanged.
func (s *Selector) Apply(delta float64) int {
	if s.disabled {
		return s.value
	}
	steps := s.strategy.Steps(delta)
	if steps == 0 {
		return s.value
	}
	next := ClampDuration(s.value + steps)
	if next == s.value {
		return s.value
	}
	crossings := next - s.value
	if crossings < 0 {
		crossings = -crossings
	}
	s.value = next
	if s.feedback != nil {
		for i := 0; i < crossings; i++ {
			s.feedback()
		}
	}
	return s.value
}

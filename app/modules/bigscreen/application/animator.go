package bigscreenservice

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Count-up durations.
const (
	DefaultCountDuration  = 800 * time.Millisecond
	HeadlineCountDuration = 1200 * time.Millisecond
	BallCountDuration     = 700 * time.Millisecond
)

type countState struct {
	actual    int64
	text      string
	frame     FrameID
	animating bool
	gen       uint64
}

// Animator interpolates displayed score text toward new values with a cubic ease-out.
// Each key animates independently; a new target for a key replaces its running animation.
type Animator struct {
	clock   clockwork.Clock
	frames  FrameScheduler
	onFrame func(key string, done bool)

	mu     sync.Mutex
	gen    uint64
	memory map[string]*countState
}

// NewAnimator creates an animator. onFrame, when set, runs after each rendered frame
// outside the animator's lock.
func NewAnimator(clock clockwork.Clock, frames FrameScheduler, onFrame func(key string, done bool)) *Animator {
	return &Animator{
		clock:   clock,
		frames:  frames,
		onFrame: onFrame,
		memory:  make(map[string]*countState),
	}
}

// CountUp animates key toward target. Without a previous value, or when the value is
// unchanged, the text is set at once and no frame is scheduled.
func (a *Animator) CountUp(key string, target int64, duration time.Duration, format func(int64) string) {
	if duration <= 0 {
		duration = DefaultCountDuration
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	startValue := target
	text := ""
	if prev, ok := a.memory[key]; ok {
		startValue = prev.actual
		text = prev.text
		if prev.animating {
			a.frames.CancelFrame(prev.frame)
		}
	}

	a.gen++
	gen := a.gen

	if startValue == target {
		a.memory[key] = &countState{actual: target, text: format(target), gen: gen}
		return
	}
	if text == "" {
		text = format(startValue)
	}

	began := a.clock.Now()
	var step func(now time.Time)
	step = func(now time.Time) {
		a.mu.Lock()
		current, ok := a.memory[key]
		if !ok || current.gen != gen {
			a.mu.Unlock()
			return
		}

		progress := math.Min(float64(now.Sub(began))/float64(duration), 1)
		progress = math.Max(progress, 0)
		eased := 1 - math.Pow(1-progress, 3)
		value := int64(math.Round(float64(startValue) + float64(target-startValue)*eased))

		next := &countState{actual: target, text: format(value), gen: gen}
		if progress < 1 {
			next.frame = a.frames.RequestFrame(step)
			next.animating = true
		}
		a.memory[key] = next
		a.mu.Unlock()

		if a.onFrame != nil {
			a.onFrame(key, progress >= 1)
		}
	}

	a.memory[key] = &countState{
		actual:    startValue,
		text:      text,
		frame:     a.frames.RequestFrame(step),
		animating: true,
		gen:       gen,
	}
}

// Text returns the currently displayed text for key.
func (a *Animator) Text(key string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.memory[key]
	if !ok {
		return "", false
	}
	return st.text, true
}

// Animating reports whether key has a frame in flight.
func (a *Animator) Animating(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.memory[key]
	return ok && st.animating
}

// Retain forgets every key for which keep returns false, cancelling its frame.
func (a *Animator) Retain(keep func(key string) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, st := range a.memory {
		if keep(key) {
			continue
		}
		if st.animating {
			a.frames.CancelFrame(st.frame)
		}
		delete(a.memory, key)
	}
}

// CancelAll stops every in-flight animation, leaving the last rendered text in place.
func (a *Animator) CancelAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, st := range a.memory {
		if st.animating {
			a.frames.CancelFrame(st.frame)
			st.animating = false
			st.gen = 0
		}
	}
}

package bigscreenservice

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RotationState is a copy of the rotator's pages and cursor.
type RotationState struct {
	Pages          []BoardPage
	ActivePage     int
	TrackTransform string
	Rotating       bool
}

// Rotator cycles the visible board page on a fixed interval. Exactly one page is active
// at a time; with a single page no timer runs.
type Rotator struct {
	clock          clockwork.Clock
	interval       time.Duration
	preserveCursor bool
	onChange       func(RotationState)
	onAdvance      func()

	mu     sync.Mutex
	pages  []BoardPage
	cursor int
	ticker clockwork.Ticker
	stop   chan struct{}
}

// NewRotator creates a rotator. onChange is called after every mount and page advance,
// outside the rotator's lock.
func NewRotator(clock clockwork.Clock, interval time.Duration, preserveCursor bool, onChange func(RotationState)) *Rotator {
	return &Rotator{
		clock:          clock,
		interval:       interval,
		preserveCursor: preserveCursor,
		onChange:       onChange,
	}
}

// Mount replaces all pages. The previous timer is always cleared first.
func (r *Rotator) Mount(pages []BoardPage) {
	r.mu.Lock()
	r.stopLocked()

	previous := r.cursor
	r.pages = pages
	r.cursor = 0
	if r.preserveCursor && previous < len(pages) {
		r.cursor = previous
	}

	if len(r.pages) > 1 {
		r.startLocked()
	}
	state, ok := r.markActiveLocked()
	r.mu.Unlock()

	if ok {
		r.notify(state)
	}
}

// Advance moves to the next page, wrapping around.
func (r *Rotator) Advance() {
	r.advance(nil)
}

// advance ignores ticks from a timer that a newer Mount already replaced.
func (r *Rotator) advance(from chan struct{}) {
	r.mu.Lock()
	if len(r.pages) == 0 || (from != nil && from != r.stop) {
		r.mu.Unlock()
		return
	}
	r.cursor = (r.cursor + 1) % len(r.pages)
	state, ok := r.markActiveLocked()
	r.mu.Unlock()

	if ok {
		if r.onAdvance != nil {
			r.onAdvance()
		}
		r.notify(state)
	}
}

// State returns a copy of the current pages and cursor.
func (r *Rotator) State() RotationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// Stop clears the rotation timer.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Rotator) startLocked() {
	ticker := r.clock.NewTicker(r.interval)
	stop := make(chan struct{})
	r.ticker = ticker
	r.stop = stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				r.advance(stop)
			}
		}
	}()
}

func (r *Rotator) stopLocked() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.ticker = nil
	r.stop = nil
}

// markActiveLocked flags the page under the cursor active and hides the rest.
func (r *Rotator) markActiveLocked() (RotationState, bool) {
	if r.cursor < 0 || r.cursor >= len(r.pages) {
		return RotationState{}, false
	}
	for i := range r.pages {
		active := i == r.cursor
		r.pages[i].Active = active
		r.pages[i].AriaHidden = !active
	}
	return r.stateLocked(), true
}

func (r *Rotator) stateLocked() RotationState {
	return RotationState{
		Pages:          slices.Clone(r.pages),
		ActivePage:     r.cursor,
		TrackTransform: fmt.Sprintf("translateX(-%d%%)", r.cursor*100),
		Rotating:       r.ticker != nil,
	}
}

func (r *Rotator) notify(state RotationState) {
	if r.onChange != nil {
		r.onChange(state)
	}
}

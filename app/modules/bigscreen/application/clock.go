package bigscreenservice

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// FrameID identifies a requested animation frame.
type FrameID uint64

// FrameScheduler delivers animation frame callbacks, like a display's refresh loop.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

// TimerFrames schedules each frame as a one-shot timer on the clock.
type TimerFrames struct {
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]clockwork.Timer
}

// NewTimerFrames creates a frame scheduler firing roughly every interval.
func NewTimerFrames(clock clockwork.Clock, interval time.Duration) *TimerFrames {
	return &TimerFrames{
		clock:    clock,
		interval: interval,
		timers:   make(map[FrameID]clockwork.Timer),
	}
}

func (f *TimerFrames) RequestFrame(fn func(now time.Time)) FrameID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	id := f.next
	f.timers[id] = f.clock.AfterFunc(f.interval, func() {
		f.mu.Lock()
		_, pending := f.timers[id]
		delete(f.timers, id)
		f.mu.Unlock()
		if pending {
			fn(f.clock.Now())
		}
	})
	return id
}

func (f *TimerFrames) CancelFrame(id FrameID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[id]; ok {
		t.Stop()
		delete(f.timers, id)
	}
}

// Pending reports how many frames are waiting to fire.
func (f *TimerFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

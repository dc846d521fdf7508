package bigscreenservice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace/noop"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTracer = noop.NewTracerProvider().Tracer("test")

// ------------------------
// Fake Clock
// ------------------------

// fakeClock is a clockwork fake that also remembers every ticker it handed out,
// so tests can assert which timers are running.
type fakeClock struct {
	*clockwork.FakeClock

	mu      sync.Mutex
	tickers []*trackedTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{FakeClock: clockwork.NewFakeClockAt(now)}
}

func (c *fakeClock) NewTicker(d time.Duration) clockwork.Ticker {
	t := &trackedTicker{Ticker: c.FakeClock.NewTicker(d), interval: d}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickers = append(c.tickers, t)
	return t
}

// Running returns the tickers with the given interval that were not stopped.
func (c *fakeClock) Running(d time.Duration) []*trackedTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*trackedTicker
	for _, t := range c.tickers {
		if t.interval == d && !t.Stopped() {
			out = append(out, t)
		}
	}
	return out
}

func (c *fakeClock) All() []*trackedTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*trackedTicker(nil), c.tickers...)
}

type trackedTicker struct {
	clockwork.Ticker
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

func (t *trackedTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.Ticker.Stop()
}

func (t *trackedTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// ------------------------
// Fake Frame Scheduler
// ------------------------

type fakeFrames struct {
	mu        sync.Mutex
	next      FrameID
	pending   map[FrameID]func(time.Time)
	requested int
	cancelled int
}

func newFakeFrames() *fakeFrames {
	return &fakeFrames{pending: make(map[FrameID]func(time.Time))}
}

func (f *fakeFrames) RequestFrame(fn func(now time.Time)) FrameID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.requested++
	f.pending[f.next] = fn
	return f.next
}

func (f *fakeFrames) CancelFrame(id FrameID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[id]; ok {
		f.cancelled++
		delete(f.pending, id)
	}
}

func (f *fakeFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *fakeFrames) Requested() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requested
}

// Flush runs every frame pending right now; frames they request wait for the next Flush.
func (f *fakeFrames) Flush(now time.Time) {
	f.mu.Lock()
	due := f.pending
	f.pending = make(map[FrameID]func(time.Time))
	f.mu.Unlock()

	for _, fn := range due {
		fn(now)
	}
}

// ------------------------
// Fake Upstream
// ------------------------

type FakeUpstream struct {
	mu    sync.Mutex
	trace []string

	FetchSummaryFunc   func(ctx context.Context) (*bigscreendomain.Summary, error)
	FetchLiveGamesFunc func(ctx context.Context) ([]bigscreendomain.LiveGame, error)
}

func NewFakeUpstream() *FakeUpstream {
	return &FakeUpstream{trace: []string{}}
}

func (f *FakeUpstream) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeUpstream) FetchSummary(ctx context.Context) (*bigscreendomain.Summary, error) {
	f.record("FetchSummary")
	if f.FetchSummaryFunc != nil {
		return f.FetchSummaryFunc(ctx)
	}
	return &bigscreendomain.Summary{}, nil
}

func (f *FakeUpstream) FetchLiveGames(ctx context.Context) ([]bigscreendomain.LiveGame, error) {
	f.record("FetchLiveGames")
	if f.FetchLiveGamesFunc != nil {
		return f.FetchLiveGamesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeUpstream) Calls(step string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.trace {
		if s == step {
			n++
		}
	}
	return n
}

// ------------------------
// Recording Publisher
// ------------------------

type recordingPublisher struct {
	mu    sync.Mutex
	board []BoardSnapshot
	live  []LiveSnapshot
}

func (p *recordingPublisher) PublishBoard(_ context.Context, s BoardSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.board = append(p.board, s)
	return nil
}

func (p *recordingPublisher) PublishLive(_ context.Context, s LiveSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = append(p.live, s)
	return nil
}

func (p *recordingPublisher) Boards() []BoardSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]BoardSnapshot(nil), p.board...)
}

func (p *recordingPublisher) Lives() []LiveSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LiveSnapshot(nil), p.live...)
}

// ------------------------
// Recording Metrics
// ------------------------

type recordingMetrics struct {
	mu        sync.Mutex
	fetches   map[string]int
	failures  map[string]int
	stale     map[string]int
	rotations map[string]int
	liveGames int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		fetches:   map[string]int{},
		failures:  map[string]int{},
		stale:     map[string]int{},
		rotations: map[string]int{},
	}
}

func (m *recordingMetrics) RecordFetch(endpoint string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[endpoint]++
	if !success {
		m.failures[endpoint]++
	}
}

func (m *recordingMetrics) RecordStaleResponse(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale[endpoint]++
}

func (m *recordingMetrics) RecordPageRotation(surface string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotations[surface]++
}

func (m *recordingMetrics) SetLiveGames(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveGames = count
}

func (m *recordingMetrics) Rotations(surface string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotations[surface]
}

func (m *recordingMetrics) Stale(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale[endpoint]
}

// ------------------------
// Builders
// ------------------------

func ago(d time.Duration) string {
	return testNow.Add(-d).Format(time.RFC3339)
}

func machineWithWindows(name string, lastPlayed string, slugs ...string) bigscreendomain.Machine {
	m := bigscreendomain.Machine{MachineName: name, IsActive: true}
	for _, slug := range slugs {
		m.Windows = append(m.Windows, bigscreendomain.Window{
			Slug:  slug,
			Title: name + " - " + slug,
			Leaderboard: []bigscreendomain.ScoreRow{
				{ScreenName: "ACE", Score: 1000, LastPlayed: lastPlayed},
			},
		})
	}
	return m
}

func liveGame(id int64, scores ...bigscreendomain.LiveScore) bigscreendomain.LiveGame {
	return bigscreendomain.LiveGame{
		GameID:      id,
		MachineName: "Medieval Madness",
		MachineIP:   "10.0.0.7",
		IsActive:    true,
		Ball:        1,
		Scores:      scores,
	}
}

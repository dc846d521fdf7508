package bigscreenservice

import (
	"context"
	"sync"
	"testing"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc      *BigScreenService
	clock    *fakeClock
	upstream *FakeUpstream
	pub      *recordingPublisher

	mu    sync.Mutex
	games []bigscreendomain.LiveGame
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		clock:    newFakeClock(testNow),
		upstream: NewFakeUpstream(),
		pub:      &recordingPublisher{},
	}
	f.upstream.FetchLiveGamesFunc = func(context.Context) ([]bigscreendomain.LiveGame, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.games, nil
	}
	f.svc = NewBigScreenService(Config{}, f.upstream, f.pub, discardLogger(), nil, testTracer, f.clock, newFakeFrames())
	return f
}

func (f *serviceFixture) setGames(games ...bigscreendomain.LiveGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
}

func (f *serviceFixture) start(t *testing.T) {
	t.Helper()
	go f.svc.Run(context.Background())
	t.Cleanup(func() { _ = f.svc.Close() })

	require.Eventually(t, func() bool {
		return f.upstream.Calls("FetchSummary") == 1 && f.upstream.Calls("FetchLiveGames") == 1
	}, time.Second, 5*time.Millisecond)
}

// pollLive advances the clock by one live poll interval and waits for the poll to land.
func (f *serviceFixture) pollLive(t *testing.T) {
	t.Helper()
	want := f.upstream.Calls("FetchLiveGames") + 1

	require.Eventually(t, func() bool {
		return len(f.clock.Running(DefaultConfig().LiveRefreshInterval)) == 1
	}, time.Second, 5*time.Millisecond)

	f.clock.Advance(DefaultConfig().LiveRefreshInterval)
	require.Eventually(t, func() bool { return f.upstream.Calls("FetchLiveGames") == want }, time.Second, 5*time.Millisecond)
}

func TestService_LiveFlipTriggersOneExtraBoardRefresh(t *testing.T) {
	f := newServiceFixture(t)
	f.start(t)

	f.setGames(liveGame(1, player(1, 10, true)))
	f.pollLive(t)
	require.Eventually(t, func() bool { return f.upstream.Calls("FetchSummary") == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return f.svc.Board().Live }, time.Second, 5*time.Millisecond)

	f.pollLive(t)
	f.pollLive(t)
	assert.Never(t, func() bool { return f.upstream.Calls("FetchSummary") > 2 }, 50*time.Millisecond, 5*time.Millisecond)

	f.setGames()
	f.pollLive(t)
	require.Eventually(t, func() bool { return f.upstream.Calls("FetchSummary") == 3 }, time.Second, 5*time.Millisecond)
	assert.False(t, f.svc.Board().Live)
}

func TestService_RequestRefresh(t *testing.T) {
	f := newServiceFixture(t)
	f.start(t)

	f.svc.RequestRefresh()

	require.Eventually(t, func() bool { return f.upstream.Calls("FetchSummary") == 2 }, time.Second, 5*time.Millisecond)
}

func TestService_CloseStopsEverything(t *testing.T) {
	f := newServiceFixture(t)
	f.start(t)

	require.NoError(t, f.svc.Close())

	for _, tk := range f.clock.All() {
		assert.True(t, tk.Stopped(), "ticker %v still running", tk.interval)
	}
}

func TestService_BoardHeight(t *testing.T) {
	f := newServiceFixture(t)

	tests := []struct {
		name     string
		viewport bigscreendomain.Viewport
		want     float64
	}{
		{name: "subtracts padding", viewport: bigscreendomain.Viewport{InnerHeight: 1080, PaddingTop: 40, PaddingBottom: 40}, want: 1000},
		{name: "never negative", viewport: bigscreendomain.Viewport{InnerHeight: 50, PaddingTop: 40, PaddingBottom: 40}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.svc.BoardHeight(tt.viewport)
			assert.Equal(t, tt.want, got.MinHeight)
			assert.Equal(t, tt.want, got.MaxHeight)
			assert.Equal(t, 0, got.ActivePage)
		})
	}
}

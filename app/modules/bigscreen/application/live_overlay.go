package bigscreenservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// LiveOverlay polls in-progress games and renders them beside the rotating board.
type LiveOverlay struct {
	upstream     Upstream
	publisher    Publisher
	metrics      Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	clock        clockwork.Clock
	cfg          Config
	animator     *Animator
	onTransition func(hasLive bool)

	// frameLimiter thins frame-driven publishes; the final frame always goes out.
	frameLimiter *rate.Limiter
	issued       atomic.Uint64

	mu         sync.Mutex
	applied    uint64
	hasLive    bool
	pages      [][]bigscreendomain.LiveGame
	pageIndex  int
	receivedAt time.Time
	message    string
	pageTicker clockwork.Ticker
	pageStop   chan struct{}
	timeTicker clockwork.Ticker
	timeStop   chan struct{}
}

// NewLiveOverlay creates the overlay. onTransition runs whenever "has any live game" flips.
func NewLiveOverlay(
	cfg Config,
	upstream Upstream,
	publisher Publisher,
	metrics Metrics,
	logger *slog.Logger,
	tracer trace.Tracer,
	clock clockwork.Clock,
	frames FrameScheduler,
	onTransition func(hasLive bool),
) *LiveOverlay {
	l := &LiveOverlay{
		upstream:     upstream,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
		tracer:       tracer,
		clock:        clock,
		cfg:          cfg,
		onTransition: onTransition,
		frameLimiter: rate.NewLimiter(rate.Every(cfg.LivePublishInterval), 1),
	}
	l.animator = NewAnimator(clock, frames, l.handleFrame)
	return l
}

// Run polls immediately and then every LiveRefreshInterval until ctx is done.
func (l *LiveOverlay) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(l.cfg.LiveRefreshInterval)
	defer ticker.Stop()
	defer l.Close()

	l.pollWithTimeout(ctx)
	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "Live poll loop stopped")
			return
		case <-ticker.Chan():
			l.pollWithTimeout(ctx)
		}
	}
}

func (l *LiveOverlay) pollWithTimeout(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()
	_ = l.Poll(ctx)
}

// Poll fetches live games once. A failed fetch clears the overlay and shows
// LiveUnavailableMessage; the next poll retries.
func (l *LiveOverlay) Poll(ctx context.Context) error {
	seq := l.issued.Add(1)

	ctx, span := l.tracer.Start(ctx, "bigscreen.LiveOverlay.Poll")
	defer span.End()

	start := l.clock.Now()
	games, err := l.upstream.FetchLiveGames(ctx)
	l.metrics.RecordFetch(EndpointLive, err == nil, l.clock.Now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "live fetch failed")
		l.logger.ErrorContext(ctx, "Failed to load live games",
			"error", err,
			"sequence", seq,
		)
		if !l.apply(ctx, seq, nil, LiveUnavailableMessage, l.clock.Now()) {
			return ErrStaleResponse
		}
		return fmt.Errorf("failed to load live games: %w", err)
	}

	if !l.apply(ctx, seq, games, "", l.clock.Now()) {
		return ErrStaleResponse
	}
	return nil
}

// apply renders a poll result. It returns false when a newer poll was already applied.
func (l *LiveOverlay) apply(ctx context.Context, seq uint64, games []bigscreendomain.LiveGame, message string, receivedAt time.Time) bool {
	l.mu.Lock()
	if seq < l.applied {
		l.mu.Unlock()
		l.metrics.RecordStaleResponse(EndpointLive)
		l.logger.WarnContext(ctx, "Discarding stale live response", "sequence", seq)
		return false
	}
	l.applied = seq

	wasLive := l.hasLive
	l.hasLive = len(games) > 0
	l.message = message

	if !l.hasLive {
		l.pages = nil
		l.pageIndex = 0
		l.stopPageTimerLocked()
		l.stopTimeTimerLocked()
		l.animator.Retain(func(string) bool { return false })
	} else {
		l.pages = bigscreendomain.PaginateLiveGames(games, l.cfg.MaxVisibleLive)
		if l.pageIndex >= len(l.pages) {
			l.pageIndex = 0
		}
		l.receivedAt = receivedAt
		l.animateLocked(games)
		// The page timer keeps its phase across polls; it only starts or stops
		// when the page count crosses one.
		if len(l.pages) > 1 {
			if l.pageTicker == nil {
				l.startPageTimerLocked()
			}
		} else {
			l.stopPageTimerLocked()
		}
		if l.timeTicker == nil {
			l.startTimeTimerLocked()
		}
	}

	snapshot := l.snapshotLocked(l.clock.Now())
	hasLive := l.hasLive
	l.mu.Unlock()

	l.metrics.SetLiveGames(len(games))
	if wasLive != hasLive {
		l.logger.InfoContext(ctx, "Live state changed", "live", hasLive)
		if l.onTransition != nil {
			l.onTransition(hasLive)
		}
	}
	l.publish(snapshot)
	return true
}

func (l *LiveOverlay) animateLocked(games []bigscreendomain.LiveGame) {
	keys := make(map[string]struct{})
	for _, game := range games {
		for _, score := range game.Scores {
			playerKey := bigscreendomain.PlayerKey(game.GameID, score)
			keys[playerKey] = struct{}{}
			l.animator.CountUp(playerKey, score.Score, HeadlineCountDuration, bigscreendomain.FormatLiveScore)

			for _, ball := range score.BallTimes {
				ballKey := bigscreendomain.BallKey(playerKey, ball.Ball)
				keys[ballKey] = struct{}{}
				l.animator.CountUp(ballKey, ball.Score, BallCountDuration, bigscreendomain.FormatScore)
			}
		}
	}
	l.animator.Retain(func(key string) bool {
		_, ok := keys[key]
		return ok
	})
}

// Snapshot returns the overlay with clocks extrapolated to now.
func (l *LiveOverlay) Snapshot() LiveSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked(l.clock.Now())
}

// HasLive reports whether any live game is shown.
func (l *LiveOverlay) HasLive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasLive
}

// Close clears every timer and cancels all in-flight animation frames.
func (l *LiveOverlay) Close() {
	l.mu.Lock()
	l.stopPageTimerLocked()
	l.stopTimeTimerLocked()
	l.mu.Unlock()

	l.animator.CancelAll()
}

func (l *LiveOverlay) snapshotLocked(now time.Time) LiveSnapshot {
	snapshot := LiveSnapshot{
		Live:       l.hasLive,
		PageCount:  len(l.pages),
		ActivePage: l.pageIndex,
		Message:    l.message,
		ReceivedAt: l.receivedAt,
		Cards:      []LiveCardView{},
	}
	if l.pageIndex >= len(l.pages) {
		return snapshot
	}
	for _, game := range l.pages[l.pageIndex] {
		snapshot.Cards = append(snapshot.Cards, l.liveCard(game, now))
	}
	return snapshot
}

func (l *LiveOverlay) liveCard(game bigscreendomain.LiveGame, now time.Time) LiveCardView {
	card := LiveCardView{
		GameID: game.GameID,
		Title:  firstNonEmpty(game.MachineName, game.MachineUID, "Unknown machine"),
		Meta:   firstNonEmpty(game.MachineIP, "Unknown IP"),
		Badge:  "Live",
		Ball:   game.Ball,
		Clock:  l.clockText(game.SecondsElapsed, game.IsActive, now),
	}
	if len(game.Scores) == 0 {
		card.Empty = "Waiting for scores…"
		return card
	}

	for _, score := range game.Scores {
		playerKey := bigscreendomain.PlayerKey(game.GameID, score)
		view := LiveScoreView{
			Key:    playerKey,
			Name:   firstNonEmpty(score.ScreenName, score.Initials, "Player"),
			Active: score.IsPlayerUp,
			Score:  l.textOr(playerKey, bigscreendomain.FormatLiveScore(score.Score)),
		}
		for _, ball := range score.BallTimes {
			view.Balls = append(view.Balls, BallView{
				Label:   fmt.Sprintf("B%d", ball.Ball),
				Score:   l.textOr(bigscreendomain.BallKey(playerKey, ball.Ball), bigscreendomain.FormatScore(ball.Score)),
				Clock:   l.clockText(ball.Seconds, ball.IsCurrent, now),
				Current: ball.IsCurrent,
			})
		}
		card.Scores = append(card.Scores, view)
	}
	return card
}

// clockText renders a play clock; live clocks keep ticking from the time of the poll.
func (l *LiveOverlay) clockText(baseSeconds int, live bool, now time.Time) string {
	if !live {
		return bigscreendomain.FormatClock(baseSeconds)
	}
	return bigscreendomain.FormatClock(bigscreendomain.ComputeLiveSeconds(baseSeconds, l.receivedAt, now))
}

func (l *LiveOverlay) textOr(key, fallback string) string {
	if text, ok := l.animator.Text(key); ok {
		return text
	}
	return fallback
}

func (l *LiveOverlay) startPageTimerLocked() {
	ticker := l.clock.NewTicker(l.cfg.LivePageInterval)
	stop := make(chan struct{})
	l.pageTicker, l.pageStop = ticker, stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				l.advancePage(stop)
			}
		}
	}()
}

func (l *LiveOverlay) advancePage(from chan struct{}) {
	l.mu.Lock()
	if from != l.pageStop || len(l.pages) == 0 {
		l.mu.Unlock()
		return
	}
	l.pageIndex = (l.pageIndex + 1) % len(l.pages)
	snapshot := l.snapshotLocked(l.clock.Now())
	l.mu.Unlock()

	l.metrics.RecordPageRotation(SurfaceLive)
	l.publish(snapshot)
}

func (l *LiveOverlay) stopPageTimerLocked() {
	if l.pageTicker == nil {
		return
	}
	l.pageTicker.Stop()
	close(l.pageStop)
	l.pageTicker, l.pageStop = nil, nil
}

func (l *LiveOverlay) startTimeTimerLocked() {
	ticker := l.clock.NewTicker(l.cfg.LiveTickInterval)
	stop := make(chan struct{})
	l.timeTicker, l.timeStop = ticker, stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				l.tick(stop)
			}
		}
	}()
}

// tick republishes the overlay so live clocks advance between polls.
func (l *LiveOverlay) tick(from chan struct{}) {
	l.mu.Lock()
	if from != l.timeStop {
		l.mu.Unlock()
		return
	}
	snapshot := l.snapshotLocked(l.clock.Now())
	l.mu.Unlock()

	l.publish(snapshot)
}

func (l *LiveOverlay) stopTimeTimerLocked() {
	if l.timeTicker == nil {
		return
	}
	l.timeTicker.Stop()
	close(l.timeStop)
	l.timeTicker, l.timeStop = nil, nil
}

func (l *LiveOverlay) handleFrame(_ string, done bool) {
	if !done && !l.frameLimiter.Allow() {
		return
	}
	l.publish(l.Snapshot())
}

func (l *LiveOverlay) publish(snapshot LiveSnapshot) {
	if err := l.publisher.PublishLive(context.Background(), snapshot); err != nil {
		l.logger.Error("Failed to publish live snapshot", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Board fetches the leaderboard summary, schedules its cards and drives page rotation.
type Board struct {
	upstream  Upstream
	publisher Publisher
	metrics   Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     clockwork.Clock
	cfg       Config
	rotator   *Rotator

	live    atomic.Bool
	issued  atomic.Uint64
	trigger chan struct{}

	// mountMu serializes the stale check with the mount that follows it.
	mountMu sync.Mutex

	metaMu      sync.RWMutex
	applied     uint64
	entryCount  int
	generatedAt time.Time
}

// NewBoard creates a board showing the loading page until the first fetch lands.
func NewBoard(cfg Config, upstream Upstream, publisher Publisher, metrics Metrics, logger *slog.Logger, tracer trace.Tracer, clock clockwork.Clock) *Board {
	b := &Board{
		upstream:  upstream,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		tracer:    tracer,
		clock:     clock,
		cfg:       cfg,
		trigger:   make(chan struct{}, 1),
	}
	b.rotator = NewRotator(clock, cfg.RotateInterval, cfg.PreservePageCursor, b.publishState)
	b.rotator.onAdvance = func() { metrics.RecordPageRotation(SurfaceBoard) }
	return b
}

// Run shows the loading page, fetches immediately and then every RefreshInterval or
// whenever Trigger is called. It returns when ctx is done.
func (b *Board) Run(ctx context.Context) {
	b.rotator.Mount(EmptyBoardPages(LoadingMessage))

	ticker := b.clock.NewTicker(b.cfg.RefreshInterval)
	defer ticker.Stop()
	defer b.rotator.Stop()

	b.refreshWithTimeout(ctx)
	for {
		select {
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "Board refresh loop stopped")
			return
		case <-ticker.Chan():
			b.refreshWithTimeout(ctx)
		case <-b.trigger:
			b.refreshWithTimeout(ctx)
		}
	}
}

func (b *Board) refreshWithTimeout(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.FetchTimeout)
	defer cancel()
	// Failures are logged inside Refresh; the previous board stays on screen.
	_ = b.Refresh(ctx)
}

// Trigger requests an out-of-band refresh. Requests made while one is pending coalesce.
func (b *Board) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Refresh fetches the summary and rebuilds every entry, the schedule and all pages.
// On failure the previously mounted pages are left untouched.
func (b *Board) Refresh(ctx context.Context) error {
	seq := b.issued.Add(1)

	ctx, span := b.tracer.Start(ctx, "bigscreen.Board.Refresh",
		trace.WithAttributes(attribute.Int64("bigscreen.sequence", int64(seq))),
	)
	defer span.End()

	start := b.clock.Now()
	summary, err := b.upstream.FetchSummary(ctx)
	b.metrics.RecordFetch(EndpointSummary, err == nil, b.clock.Now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary fetch failed")
		b.logger.ErrorContext(ctx, "Failed to load leaderboard",
			"error", err,
			"sequence", seq,
		)
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}

	b.mountMu.Lock()
	defer b.mountMu.Unlock()

	b.metaMu.Lock()
	if seq < b.applied {
		b.metaMu.Unlock()
		b.metrics.RecordStaleResponse(EndpointSummary)
		b.logger.WarnContext(ctx, "Discarding stale leaderboard response",
			"sequence", seq,
			"applied", b.applied,
		)
		return ErrStaleResponse
	}

	now := b.clock.Now()
	entries := bigscreendomain.BuildCardEntries(*summary, now)
	pages := RenderBoard(entries, b.cfg.PriorityRules, b.cfg.CardsPerPage, now)

	b.applied = seq
	b.entryCount = len(entries)
	b.generatedAt = now
	b.metaMu.Unlock()

	b.rotator.Mount(pages)

	b.logger.DebugContext(ctx, "Leaderboard rebuilt",
		"sequence", seq,
		"entries", len(entries),
		"pages", len(pages),
	)
	return nil
}

// SetLive toggles the board's live styling and republishes when it changes.
func (b *Board) SetLive(live bool) {
	if b.live.Swap(live) == live {
		return
	}
	b.publishState(b.rotator.State())
}

// Snapshot returns the current board state.
func (b *Board) Snapshot() BoardSnapshot {
	return b.snapshotFrom(b.rotator.State())
}

// Stop clears the rotation timer.
func (b *Board) Stop() {
	b.rotator.Stop()
}

func (b *Board) snapshotFrom(state RotationState) BoardSnapshot {
	b.metaMu.RLock()
	defer b.metaMu.RUnlock()

	return BoardSnapshot{
		Pages:          state.Pages,
		ActivePage:     state.ActivePage,
		TrackTransform: state.TrackTransform,
		Rotating:       state.Rotating,
		Live:           b.live.Load(),
		Sequence:       b.applied,
		EntryCount:     b.entryCount,
		GeneratedAt:    b.generatedAt,
	}
}

func (b *Board) publishState(state RotationState) {
	snapshot := b.snapshotFrom(state)
	if err := b.publisher.PublishBoard(context.Background(), snapshot); err != nil {
		b.logger.Error("Failed to publish board snapshot",
			"error", err,
			"active_page", snapshot.ActivePage,
		)
	}
}

package bigscreenservice

import (
	"context"
	"log/slog"
	"sync"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
)

// BigScreenService owns the rotating board and the live overlay of one display.
type BigScreenService struct {
	board  *Board
	live   *LiveOverlay
	logger *slog.Logger

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewBigScreenService wires the board and the live overlay. A change in "has any live
// game" toggles the board's live flag and triggers one out-of-band board refresh.
func NewBigScreenService(
	cfg Config,
	upstream Upstream,
	publisher Publisher,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
	clock clockwork.Clock,
	frames FrameScheduler,
) *BigScreenService {
	cfg = cfg.withDefaults()
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = NoOpMetrics{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if frames == nil {
		frames = NewTimerFrames(clock, cfg.FrameInterval)
	}

	s := &BigScreenService{logger: logger}
	s.board = NewBoard(cfg, upstream, publisher, metrics, logger, tracer, clock)
	s.live = NewLiveOverlay(cfg, upstream, publisher, metrics, logger, tracer, clock, frames, func(hasLive bool) {
		s.board.SetLive(hasLive)
		s.board.Trigger()
	})
	return s
}

// Run starts the board and live loops and blocks until ctx is done or Close is called.
func (s *BigScreenService) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	s.logger.InfoContext(ctx, "Starting big-screen scheduler")

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.board.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.live.Run(ctx)
	}()
	s.wg.Wait()
}

// Close stops every ticker and cancels all pending animation frames.
func (s *BigScreenService) Close() error {
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelMu.Unlock()

	s.wg.Wait()
	s.board.Stop()
	s.live.Close()
	return nil
}

func (s *BigScreenService) Board() BoardSnapshot { return s.board.Snapshot() }

func (s *BigScreenService) Live() LiveSnapshot { return s.live.Snapshot() }

// RequestRefresh asks for an out-of-band board refresh.
func (s *BigScreenService) RequestRefresh() { s.board.Trigger() }

// BoardHeight sizes the active board page for a display's viewport.
func (s *BigScreenService) BoardHeight(viewport bigscreendomain.Viewport) HeightView {
	height := bigscreendomain.BoardHeight(viewport)
	return HeightView{
		ActivePage: s.board.Snapshot().ActivePage,
		MinHeight:  height,
		MaxHeight:  height,
	}
}

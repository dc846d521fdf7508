package bigscreenservice

import (
	"context"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

// Upstream is the read-only arcade backend API.
type Upstream interface {
	FetchSummary(ctx context.Context) (*bigscreendomain.Summary, error)
	FetchLiveGames(ctx context.Context) ([]bigscreendomain.LiveGame, error)
}

// Publisher receives every new board and live snapshot.
type Publisher interface {
	PublishBoard(ctx context.Context, snapshot BoardSnapshot) error
	PublishLive(ctx context.Context, snapshot LiveSnapshot) error
}

// Metrics records scheduler activity.
type Metrics interface {
	RecordFetch(endpoint string, success bool, duration time.Duration)
	RecordStaleResponse(endpoint string)
	RecordPageRotation(surface string)
	SetLiveGames(count int)
}

// Service is the big-screen scheduler consumed by the display transport.
type Service interface {
	Run(ctx context.Context)
	Close() error
	Board() BoardSnapshot
	Live() LiveSnapshot
	RequestRefresh()
	BoardHeight(viewport bigscreendomain.Viewport) HeightView
}

// Endpoint labels used for metrics and logs.
const (
	EndpointSummary = "summary"
	EndpointLive    = "live"
)

// Rotation surfaces.
const (
	SurfaceBoard = "board"
	SurfaceLive  = "live"
)

type noopPublisher struct{}

func (noopPublisher) PublishBoard(context.Context, BoardSnapshot) error { return nil }
func (noopPublisher) PublishLive(context.Context, LiveSnapshot) error   { return nil }

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordFetch(string, bool, time.Duration) {}
func (NoOpMetrics) RecordStaleResponse(string)              {}
func (NoOpMetrics) RecordPageRotation(string)               {}
func (NoOpMetrics) SetLiveGames(int)                        {}

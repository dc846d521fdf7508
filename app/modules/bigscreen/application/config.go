package bigscreenservice

import (
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

// Config holds the scheduler timings and limits.
type Config struct {
	RefreshInterval     time.Duration
	RotateInterval      time.Duration
	CardsPerPage        int
	LiveRefreshInterval time.Duration
	LivePageInterval    time.Duration
	LiveTickInterval    time.Duration
	MaxVisibleLive      int
	FrameInterval       time.Duration
	LivePublishInterval time.Duration
	FetchTimeout        time.Duration
	PreservePageCursor  bool
	PriorityRules       bigscreendomain.PriorityRules
}

// DefaultConfig returns the stock big-screen timings.
func DefaultConfig() Config {
	return Config{
		RefreshInterval:     15 * time.Second,
		RotateInterval:      12 * time.Second,
		CardsPerPage:        6,
		LiveRefreshInterval: 2 * time.Second,
		LivePageInterval:    9 * time.Second,
		LiveTickInterval:    time.Second,
		MaxVisibleLive:      4,
		FrameInterval:       16 * time.Millisecond,
		LivePublishInterval: 50 * time.Millisecond,
		FetchTimeout:        10 * time.Second,
		PreservePageCursor:  true,
		PriorityRules:       bigscreendomain.DefaultPriorityRules(),
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	if c.RotateInterval <= 0 {
		c.RotateInterval = d.RotateInterval
	}
	if c.CardsPerPage <= 0 {
		c.CardsPerPage = d.CardsPerPage
	}
	if c.LiveRefreshInterval <= 0 {
		c.LiveRefreshInterval = d.LiveRefreshInterval
	}
	if c.LivePageInterval <= 0 {
		c.LivePageInterval = d.LivePageInterval
	}
	if c.LiveTickInterval <= 0 {
		c.LiveTickInterval = d.LiveTickInterval
	}
	if c.MaxVisibleLive <= 0 {
		c.MaxVisibleLive = d.MaxVisibleLive
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.LivePublishInterval <= 0 {
		c.LivePublishInterval = d.LivePublishInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.PriorityRules.Leaderboard == nil && c.PriorityRules.Tournament == nil {
		c.PriorityRules = d.PriorityRules
	}
	return c
}

package bigscreenservice

import (
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

// BoardPage is a fixed-capacity group of cards shown together.
type BoardPage struct {
	Index      int                        `json:"index"`
	Active     bool                       `json:"active"`
	AriaHidden bool                       `json:"aria_hidden"`
	Cards      []bigscreendomain.CardView `json:"cards"`
}

// BoardSnapshot is the complete rotating leaderboard state sent to displays.
type BoardSnapshot struct {
	Pages          []BoardPage `json:"pages"`
	ActivePage     int         `json:"active_page"`
	TrackTransform string      `json:"track_transform"`
	Rotating       bool        `json:"rotating"`
	Live           bool        `json:"live"`
	Sequence       uint64      `json:"sequence"`
	EntryCount     int         `json:"entry_count"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

// LiveSnapshot is the live-game overlay state sent to displays.
type LiveSnapshot struct {
	Live       bool           `json:"live"`
	PageCount  int            `json:"page_count"`
	ActivePage int            `json:"active_page"`
	Cards      []LiveCardView `json:"cards"`
	Message    string         `json:"message,omitempty"`
	ReceivedAt time.Time      `json:"received_at"`
}

// LiveCardView renders one in-progress game.
type LiveCardView struct {
	GameID int64           `json:"game_id"`
	Title  string          `json:"title"`
	Meta   string          `json:"meta"`
	Badge  string          `json:"badge"`
	Clock  string          `json:"clock"`
	Ball   int             `json:"ball"`
	Empty  string          `json:"empty,omitempty"`
	Scores []LiveScoreView `json:"scores,omitempty"`
}

// LiveScoreView is one player's animated score line.
type LiveScoreView struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Score  string     `json:"score"`
	Balls  []BallView `json:"balls,omitempty"`
}

// BallView is one ball chip with its sub-score and play clock.
type BallView struct {
	Label   string `json:"label"`
	Score   string `json:"score"`
	Clock   string `json:"clock"`
	Current bool   `json:"current"`
}

// HeightView tells a display how tall the active board page should be.
type HeightView struct {
	ActivePage int     `json:"active_page"`
	MinHeight  float64 `json:"min_height"`
	MaxHeight  float64 `json:"max_height"`
}

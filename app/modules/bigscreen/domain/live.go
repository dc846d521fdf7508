package bigscreendomain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// PlayerKey identifies a player's score within a live game across polls.
func PlayerKey(gameID int64, score LiveScore) string {
	game := "game"
	if gameID != 0 {
		game = strconv.FormatInt(gameID, 10)
	}

	var player string
	switch {
	case score.PlayerID != 0:
		player = strconv.FormatInt(score.PlayerID, 10)
	case score.PlayerNumber != 0:
		player = strconv.Itoa(score.PlayerNumber)
	case score.Initials != "":
		player = score.Initials
	case score.ScreenName != "":
		player = score.ScreenName
	default:
		player = "unknown"
	}
	return game + ":" + player
}

// BallKey identifies one ball sub-score of a player.
func BallKey(playerKey string, ball int) string {
	return fmt.Sprintf("%s:ball:%d", playerKey, ball)
}

// PaginateLiveGames splits games into pages of at most perPage. Zero or perPage games
// yield a single page.
func PaginateLiveGames(games []LiveGame, perPage int) [][]LiveGame {
	if perPage <= 0 || len(games) <= perPage {
		return [][]LiveGame{games}
	}
	pages := make([][]LiveGame, 0, (len(games)+perPage-1)/perPage)
	for i := 0; i < len(games); i += perPage {
		pages = append(pages, games[i:min(i+perPage, len(games))])
	}
	return pages
}

// ComputeLiveSeconds extrapolates a ticking clock: base plus the time elapsed since the
// value was received. A zero receivedAt means "just now".
func ComputeLiveSeconds(baseSeconds int, receivedAt, now time.Time) int {
	if receivedAt.IsZero() {
		receivedAt = now
	}
	delta := now.Sub(receivedAt).Seconds()
	return max(0, int(math.Floor(float64(baseSeconds)+delta)))
}

// Viewport is the display area a client reports on mount and resize.
type Viewport struct {
	InnerHeight   float64 `json:"inner_height"`
	PaddingTop    float64 `json:"padding_top"`
	PaddingBottom float64 `json:"padding_bottom"`
}

// BoardHeight is the height the active board page should fill.
func BoardHeight(v Viewport) float64 {
	return math.Max(v.InnerHeight-v.PaddingTop-v.PaddingBottom, 0)
}

package bigscreendomain

import (
	"testing"
	"time"
)

func TestPlayerKey(t *testing.T) {
	tests := []struct {
		gameID int64
		score  LiveScore
		want   string
	}{
		{12, LiveScore{PlayerID: 7, PlayerNumber: 1}, "12:7"},
		{12, LiveScore{PlayerNumber: 2}, "12:2"},
		{12, LiveScore{Initials: "ABC"}, "12:ABC"},
		{0, LiveScore{ScreenName: "wizard"}, "game:wizard"},
		{3, LiveScore{}, "3:unknown"},
	}
	for _, tt := range tests {
		if got := PlayerKey(tt.gameID, tt.score); got != tt.want {
			t.Errorf("PlayerKey() = %q, want %q", got, tt.want)
		}
	}
	if got := BallKey("12:7", 3); got != "12:7:ball:3" {
		t.Errorf("BallKey() = %q", got)
	}
}

func TestPaginateLiveGames(t *testing.T) {
	games := make([]LiveGame, 9)
	pages := PaginateLiveGames(games, 4)
	if len(pages) != 3 || len(pages[0]) != 4 || len(pages[2]) != 1 {
		t.Fatalf("unexpected pages: %d", len(pages))
	}
	if got := PaginateLiveGames(games[:4], 4); len(got) != 1 {
		t.Errorf("expected one page for 4 games, got %d", len(got))
	}
	if got := PaginateLiveGames(nil, 4); len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("expected one empty page for no games")
	}
}

func TestComputeLiveSeconds(t *testing.T) {
	received := testNow.Add(-2500 * time.Millisecond)
	if got := ComputeLiveSeconds(10, received, testNow); got != 12 {
		t.Errorf("ComputeLiveSeconds() = %d, want 12", got)
	}
	if got := ComputeLiveSeconds(10, time.Time{}, testNow); got != 10 {
		t.Errorf("ComputeLiveSeconds() with zero receivedAt = %d, want 10", got)
	}
	if got := ComputeLiveSeconds(-50, testNow, testNow); got != 0 {
		t.Errorf("ComputeLiveSeconds() negative = %d, want 0", got)
	}
}

func TestBoardHeight(t *testing.T) {
	if got := BoardHeight(Viewport{InnerHeight: 1080, PaddingTop: 24, PaddingBottom: 40}); got != 1016 {
		t.Errorf("BoardHeight() = %v", got)
	}
	if got := BoardHeight(Viewport{InnerHeight: 20, PaddingTop: 24}); got != 0 {
		t.Errorf("BoardHeight() = %v, want 0", got)
	}
}

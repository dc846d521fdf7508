package bigscreenservice

import (
	"slices"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

const (
	NoScoresMessage = "No scores have been recorded yet."
	LoadingMessage  = "Loading leaderboards…"
)

type weightedEntry struct {
	index     int
	weight    int
	updatedAt int64
}

// BuildRotationSchedule orders entry indices by weight (desc), then by updatedAt
// (desc, missing timestamps count as epoch 0), then by original index.
func BuildRotationSchedule(entries []bigscreendomain.CardEntry, rules bigscreendomain.PriorityRules, now time.Time) []int {
	weighted := make([]weightedEntry, len(entries))
	for i, entry := range entries {
		var updatedAt int64
		if t, ok := bigscreendomain.ParseTimestamp(entry.UpdatedAt); ok {
			updatedAt = t.UnixMilli()
		}
		weighted[i] = weightedEntry{index: i, weight: rules.CardWeight(entry, now), updatedAt: updatedAt}
	}

	slices.SortStableFunc(weighted, func(a, b weightedEntry) int {
		if a.weight != b.weight {
			return b.weight - a.weight
		}
		if a.updatedAt != b.updatedAt {
			if b.updatedAt > a.updatedAt {
				return 1
			}
			return -1
		}
		return a.index - b.index
	})

	schedule := make([]int, len(weighted))
	for i, w := range weighted {
		schedule[i] = w.index
	}
	return schedule
}

// Paginate groups the schedule into pages of perPage; the last page may be partial.
func Paginate(schedule []int, perPage int) [][]int {
	if perPage <= 0 {
		perPage = DefaultConfig().CardsPerPage
	}
	pages := make([][]int, 0, (len(schedule)+perPage-1)/perPage)
	for chunk := range slices.Chunk(schedule, perPage) {
		pages = append(pages, chunk)
	}
	return pages
}

// RenderBoard builds the full page list for a set of entries. Zero entries produce the
// single empty-state page.
func RenderBoard(entries []bigscreendomain.CardEntry, rules bigscreendomain.PriorityRules, perPage int, now time.Time) []BoardPage {
	if len(entries) == 0 {
		return EmptyBoardPages(NoScoresMessage)
	}

	groups := Paginate(BuildRotationSchedule(entries, rules, now), perPage)
	pages := make([]BoardPage, 0, len(groups))
	for i, group := range groups {
		cards := make([]bigscreendomain.CardView, 0, len(group))
		for _, idx := range group {
			cards = append(cards, entries[idx].Render())
		}
		pages = append(pages, BoardPage{Index: i, Cards: cards})
	}
	return pages
}

// EmptyBoardPages is the one-page fallback shown while loading or when nothing is recorded.
func EmptyBoardPages(message string) []BoardPage {
	return []BoardPage{{Index: 0, Cards: bigscreendomain.EmptyStateCards(message)}}
}

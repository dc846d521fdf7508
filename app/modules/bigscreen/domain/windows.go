package bigscreendomain

import (
	"slices"
	"strings"
)

// WindowOrder is the canonical display order of leaderboard windows.
var WindowOrder = []string{"all-time", "year", "month", "week", "24h"}

// windowRank returns the position of the slug's window in WindowOrder.
// Unrecognized windows rank after every known one.
func windowRank(slug string) int {
	for i, name := range WindowOrder {
		if slug == name || strings.HasSuffix(slug, "-"+name) {
			return i
		}
	}
	return len(WindowOrder)
}

// SortWindows returns the windows in canonical order without modifying the input.
// The sort is stable, so unknown windows keep their payload order.
func SortWindows(windows []Window) []Window {
	sorted := slices.Clone(windows)
	slices.SortStableFunc(sorted, func(a, b Window) int {
		return windowRank(a.Slug) - windowRank(b.Slug)
	})
	return sorted
}

// WindowLabel strips the "<machine> - " prefix the backend puts on window titles.
func WindowLabel(title, machineName string) string {
	if title == "" {
		return "Leaderboard"
	}
	if machineName != "" {
		if rest, ok := strings.CutPrefix(title, machineName+" - "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return title
}

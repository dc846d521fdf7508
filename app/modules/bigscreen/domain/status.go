package bigscreendomain

import "time"

// EntryType is the schedulable kind of a card entry.
type EntryType string

const (
	EntryLeaderboard EntryType = "leaderboard"
	EntryTournament  EntryType = "tournament"
)

// Leaderboard statuses, derived from the age of the newest score.
const (
	StatusHot    = "hot"
	StatusActive = "active"
	StatusStale  = "stale"
)

// Tournament statuses. Display statuses drive the card label, priority statuses the weight.
const (
	StatusCompleted = "completed"
	StatusUpcoming  = "upcoming"
	StatusRecent    = "recent"
)

const (
	hotWindow    = 10 * time.Minute
	activeWindow = 3 * 24 * time.Hour
)

// LeaderboardStatus classifies a leaderboard by the age of updatedAt.
func LeaderboardStatus(updatedAt string, now time.Time) string {
	a, ok := age(updatedAt, now)
	if !ok {
		return StatusStale
	}
	switch {
	case a < hotWindow:
		return StatusHot
	case a < activeWindow:
		return StatusActive
	default:
		return StatusStale
	}
}

// TournamentDisplayStatus returns completed, upcoming or active.
//
// A tournament whose end_time has passed is completed whatever its is_active flag says.
// An inactive tournament that has started (or has no start) is completed as well.
func TournamentDisplayStatus(t Tournament, now time.Time) string {
	start, hasStart := ParseTimestamp(t.StartTime)
	end, hasEnd := ParseTimestamp(t.EndTime)

	if hasEnd && !end.After(now) {
		return StatusCompleted
	}
	if !t.IsActive && (!hasStart || !start.After(now)) {
		return StatusCompleted
	}
	if hasStart && start.After(now) {
		return StatusUpcoming
	}
	return StatusActive
}

// TournamentPriorityStatus returns active, upcoming or recent for weighting.
func TournamentPriorityStatus(t Tournament, now time.Time) string {
	if TournamentDisplayStatus(t, now) == StatusActive {
		return StatusActive
	}
	if start, ok := ParseTimestamp(t.StartTime); ok && start.After(now) {
		return StatusUpcoming
	}
	if end, ok := ParseTimestamp(t.EndTime); ok && end.After(now) {
		return StatusUpcoming
	}
	return StatusRecent
}

// TournamentStatusLabel is the card title shown for a display status.
func TournamentStatusLabel(displayStatus string) string {
	switch displayStatus {
	case StatusActive:
		return "Active tournament"
	case StatusUpcoming:
		return "Upcoming tournament"
	default:
		return "Tournament"
	}
}

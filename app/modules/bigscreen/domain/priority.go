package bigscreendomain

import "time"

// PriorityRules maps an entry type and status to a base weight.
// Higher numbers surface more frequently.
type PriorityRules struct {
	Leaderboard map[string]int `yaml:"leaderboard"`
	Tournament  map[string]int `yaml:"tournament"`
}

// DefaultPriorityRules returns the stock weighting table.
func DefaultPriorityRules() PriorityRules {
	return PriorityRules{
		Leaderboard: map[string]int{
			StatusHot:    9,
			StatusActive: 6,
			StatusStale:  3,
		},
		Tournament: map[string]int{
			StatusActive:   8,
			StatusUpcoming: 6,
			StatusRecent:   4,
		},
	}
}

// Base returns the base weight. Unknown leaderboard statuses weigh as active,
// unknown tournament statuses as recent.
func (r PriorityRules) Base(entryType EntryType, status string) int {
	if entryType == EntryTournament {
		if w, ok := r.Tournament[status]; ok && w != 0 {
			return w
		}
		return r.Tournament[StatusRecent]
	}
	if w, ok := r.Leaderboard[status]; ok && w != 0 {
		return w
	}
	return r.Leaderboard[StatusActive]
}

var recencySteps = []struct {
	limit time.Duration
	bonus int
}{
	{5 * time.Minute, 6},
	{30 * time.Minute, 5},
	{2 * time.Hour, 4},
	{12 * time.Hour, 3},
	{48 * time.Hour, 2},
}

// RecencyBonus rewards recent activity: 6 under five minutes down to 1 after two days.
// A missing or unparsable timestamp earns 1.
func RecencyBonus(updatedAt string, now time.Time) int {
	a, ok := age(updatedAt, now)
	if !ok {
		return 1
	}
	for _, step := range recencySteps {
		if a < step.limit {
			return step.bonus
		}
	}
	return 1
}

// CardWeight combines base priority and recency. The result is never below 1.
func (r PriorityRules) CardWeight(entry CardEntry, now time.Time) int {
	return max(1, r.Base(entry.Type, entry.Status)+RecencyBonus(entry.UpdatedAt, now)-1)
}

package bigscreenservice

import (
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

// ScheduleRow describes one scheduled card, for operators inspecting the rotation.
type ScheduleRow struct {
	Page      int    `json:"page"`
	Slot      int    `json:"slot"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Weight    int    `json:"weight"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Eyebrow   string `json:"eyebrow"`
	Title     string `json:"title"`
}

// ScheduleReport returns the rotation order of a summary with each card's weight.
func ScheduleReport(summary bigscreendomain.Summary, rules bigscreendomain.PriorityRules, perPage int, now time.Time) []ScheduleRow {
	entries := bigscreendomain.BuildCardEntries(summary, now)
	pages := Paginate(BuildRotationSchedule(entries, rules, now), perPage)

	rows := make([]ScheduleRow, 0, len(entries))
	for page, group := range pages {
		for slot, idx := range group {
			entry := entries[idx]
			view := entry.Render()
			rows = append(rows, ScheduleRow{
				Page:      page + 1,
				Slot:      slot + 1,
				Kind:      string(view.Kind),
				Type:      string(entry.Type),
				Status:    entry.Status,
				Weight:    rules.CardWeight(entry, now),
				UpdatedAt: entry.UpdatedAt,
				Eyebrow:   view.Eyebrow,
				Title:     view.Title,
			})
		}
	}
	return rows
}

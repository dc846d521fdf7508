package bigscreendomain

import (
	"fmt"
	"time"
)

// CardKind selects the presentation template of a card view.
type CardKind string

const (
	CardLeaderboard CardKind = "leaderboard"
	CardChampion    CardKind = "champion"
	CardTournament  CardKind = "tournament"
	CardEmpty       CardKind = "empty"
)

// CardEntry is one schedulable unit of leaderboard or tournament content.
// Entries are rebuilt from scratch on every summary fetch.
type CardEntry struct {
	Type      EntryType
	Status    string
	UpdatedAt string
	Render    func() CardView
}

// CardView is the presentation-neutral view model of a card.
type CardView struct {
	Kind     CardKind      `json:"kind"`
	Eyebrow  string        `json:"eyebrow"`
	Title    string        `json:"title"`
	Meta     []string      `json:"meta,omitempty"`
	Rows     []RowView     `json:"rows,omitempty"`
	Champion *ChampionView `json:"champion,omitempty"`
	Hint     string        `json:"hint,omitempty"`
}

// RowView is one ranked player line.
type RowView struct {
	Placement string `json:"placement"`
	Name      string `json:"name"`
	Score     string `json:"score"`
	Date      string `json:"date"`
}

// ChampionView is the hero block of a champion card.
type ChampionView struct {
	Rank    string `json:"rank"`
	Name    string `json:"name"`
	Score   string `json:"score"`
	Details string `json:"details"`
}

const unnamedPlayer = "Unnamed player"

// BuildCardEntries flattens a summary into schedulable entries: tournaments first, then
// per machine its non-empty windows in canonical order followed by its champion.
func BuildCardEntries(summary Summary, now time.Time) []CardEntry {
	entries := make([]CardEntry, 0, len(summary.Tournaments)+len(summary.Games)*(len(WindowOrder)+1))

	for _, tournament := range summary.Tournaments {
		displayStatus := TournamentDisplayStatus(tournament, now)
		label := TournamentStatusLabel(displayStatus)
		entries = append(entries, CardEntry{
			Type:      EntryTournament,
			Status:    TournamentPriorityStatus(tournament, now),
			UpdatedAt: firstTimestamp(tournament.LastActivityAt, tournament.StartTime, tournament.EndTime),
			Render: func() CardView {
				return TournamentCard(tournament, label)
			},
		})
	}

	for _, machine := range summary.Games {
		for _, window := range SortWindows(machine.Windows) {
			if len(window.Leaderboard) == 0 {
				continue
			}
			updatedAt := firstTimestamp(window.Leaderboard[0].LastPlayed, machine.LastActivityAt, machine.StartTime)
			entries = append(entries, CardEntry{
				Type:      EntryLeaderboard,
				Status:    LeaderboardStatus(updatedAt, now),
				UpdatedAt: updatedAt,
				Render: func() CardView {
					return WindowCard(machine, window)
				},
			})
		}

		if machine.Champion != nil {
			updatedAt := firstTimestamp(machine.Champion.LastPlayed, machine.LastActivityAt, machine.StartTime)
			entries = append(entries, CardEntry{
				Type:      EntryLeaderboard,
				Status:    LeaderboardStatus(updatedAt, now),
				UpdatedAt: updatedAt,
				Render: func() CardView {
					return ChampionCard(machine)
				},
			})
		}
	}

	return entries
}

// WindowCard renders one time-window leaderboard of a machine.
func WindowCard(machine Machine, window Window) CardView {
	return CardView{
		Kind:    CardLeaderboard,
		Eyebrow: orDefault(machine.DisplayName(), "Featured"),
		Title:   WindowLabel(window.Title, machine.MachineName),
		Rows:    rankedRows(window.Leaderboard, false),
	}
}

// ChampionCard renders the all-time #1 of a machine. A machine without a champion
// renders an empty hero block.
func ChampionCard(machine Machine) CardView {
	card := CardView{
		Kind:    CardChampion,
		Eyebrow: orDefault(machine.MachineName, "Featured"),
		Title:   "All-time champion",
	}
	if machine.Champion == nil {
		return card
	}

	name := orDefault(machine.Champion.ScreenName, unnamedPlayer)
	date := FormatDateOnly(machine.Champion.LastPlayed)
	if date == "" {
		date = "Date unknown"
	}
	card.Champion = &ChampionView{
		Rank:    "#1",
		Name:    name,
		Score:   FormatScore(machine.Champion.Score),
		Details: name + " · " + date,
	}
	return card
}

// TournamentCard renders a tournament board with its schedule and standings.
func TournamentCard(t Tournament, statusLabel string) CardView {
	if statusLabel == "" {
		statusLabel = "Tournament"
		if t.IsActive {
			statusLabel = "Active tournament"
		}
	}

	scoring := "Custom scoring"
	if t.ScoringProfile != nil && t.ScoringProfile.Name != "" {
		scoring = t.ScoringProfile.Name
	}
	if t.GameMode != nil && t.GameMode.Name != "" {
		scoring += " · Mode: " + t.GameMode.Name
	}

	card := CardView{
		Kind:    CardTournament,
		Eyebrow: orDefault(t.Name, "Featured"),
		Title:   statusLabel,
		Meta:    []string{scoring, FormatTournamentWindow(t)},
	}

	if len(t.Leaderboard) == 0 {
		card.Hint = "No standings yet."
		if t.IsActive {
			card.Hint = "Tournament is live. Waiting for first standings."
		}
		return card
	}

	card.Rows = rankedRows(t.Leaderboard, true)
	return card
}

// EmptyStateCards is the fallback page content when no entries exist.
func EmptyStateCards(message string) []CardView {
	return []CardView{
		ChampionCard(Machine{MachineName: "Leaderboards"}),
		{
			Kind:    CardEmpty,
			Eyebrow: "Leaderboards",
			Title:   "No results yet",
			Hint:    message,
		},
	}
}

func rankedRows(rows []ScoreRow, allowInitials bool) []RowView {
	views := make([]RowView, 0, len(rows))
	for i, row := range rows {
		name := row.ScreenName
		if name == "" && allowInitials {
			name = row.Initials
		}
		views = append(views, RowView{
			Placement: fmt.Sprintf("#%d", i+1),
			Name:      orDefault(name, unnamedPlayer),
			Score:     FormatScore(row.Score),
			Date:      orDefault(FormatDateOnly(row.LastPlayed), "—"),
		})
	}
	return views
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

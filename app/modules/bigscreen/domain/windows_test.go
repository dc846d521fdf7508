package bigscreendomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func slugs(windows []Window) []string {
	out := make([]string, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.Slug)
	}
	return out
}

func TestSortWindows(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "canonical order from shuffled payload",
			input: []string{"attack-24h", "attack-year", "attack-all-time", "attack-week", "attack-month"},
			want:  []string{"attack-all-time", "attack-year", "attack-month", "attack-week", "attack-24h"},
		},
		{
			name:  "bare slugs",
			input: []string{"week", "all-time", "24h"},
			want:  []string{"all-time", "week", "24h"},
		},
		{
			name:  "unknown suffixes last in input order",
			input: []string{"x-decade", "x-week", "x-season", "x-all-time", "x-custom"},
			want:  []string{"x-all-time", "x-week", "x-decade", "x-season", "x-custom"},
		},
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := make([]Window, 0, len(tt.input))
			for _, s := range tt.input {
				windows = append(windows, Window{Slug: s})
			}
			got := slugs(SortWindows(windows))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortWindows() mismatch (-want +got):\n%s", diff)
			}
			if len(tt.input) > 0 {
				if diff := cmp.Diff(tt.input, slugs(windows)); diff != "" {
					t.Errorf("SortWindows() modified its input (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestWindowLabel(t *testing.T) {
	tests := []struct {
		title, machine, want string
	}{
		{"Medieval Madness - This week", "Medieval Madness", "This week"},
		{"All time", "Medieval Madness", "All time"},
		{"", "Medieval Madness", "Leaderboard"},
		{"Attack - 24h", "", "Attack - 24h"},
	}
	for _, tt := range tests {
		if got := WindowLabel(tt.title, tt.machine); got != tt.want {
			t.Errorf("WindowLabel(%q, %q) = %q, want %q", tt.title, tt.machine, got, tt.want)
		}
	}
}

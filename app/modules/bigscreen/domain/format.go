package bigscreendomain

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

var scoreSuffixes = []struct {
	limit  float64
	suffix string
}{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// FormatScore abbreviates large scores (1.25M, 12.5K, 250B) and groups small ones.
func FormatScore(value int64) string {
	num := float64(value)
	abs := num
	if abs < 0 {
		abs = -abs
	}

	for _, s := range scoreSuffixes {
		if abs < s.limit {
			continue
		}
		short := num / s.limit
		digits := 2
		switch {
		case short >= 100:
			digits = 0
		case short >= 10:
			digits = 1
		}
		formatted := strconv.FormatFloat(short, 'f', digits, 64)
		if strings.Contains(formatted, ".") {
			formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
		}
		return formatted + s.suffix
	}

	return FormatLiveScore(value)
}

// FormatLiveScore renders the full score with thousands separators.
func FormatLiveScore(value int64) string {
	return numberPrinter.Sprintf("%d", value)
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	seconds = max(0, seconds)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders seconds as "1h 5m", "3m 07s" or "42s".
func FormatDuration(seconds int) string {
	seconds = max(0, seconds)
	mins := seconds / 60
	secs := seconds % 60
	if mins >= 60 {
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm %02ds", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatDateOnly renders a timestamp as "Jan 2, 2006". Unparsable input yields "".
func FormatDateOnly(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatTournamentWindow describes when a tournament runs and how long it stays on screen.
func FormatTournamentWindow(t Tournament) string {
	start, hasStart := ParseTimestamp(t.StartTime)
	end, hasEnd := ParseTimestamp(t.EndTime)
	if !hasStart && !hasEnd {
		return "No schedule"
	}

	display := ""
	if until, ok := ParseTimestamp(t.DisplayUntil); ok {
		display = until.Format("Jan 2, 03:04 PM")
	}

	switch {
	case hasStart && hasEnd:
		text := start.Format("Jan 2") + " – " + end.Format("Jan 2")
		if display != "" {
			text += " (visible until " + display + ")"
		}
		return text
	case hasStart:
		text := "Starts " + start.Format("Jan 2")
		if display != "" {
			text += " · visible until " + display
		}
		return text
	default:
		text := "Ends " + end.Format("Jan 2")
		if display != "" {
			text += " · visible until " + display
		}
		return text
	}
}

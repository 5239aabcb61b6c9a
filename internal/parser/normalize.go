package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// noTime is the marker the site prints for a driver without a lap time.
const noTime = "без времени"

// dsqMarkers are the position values that mark a disqualified entrant.
var dsqMarkers = map[string]bool{"DSQ": true, "DQ": true, "ДИСКВ": true}

var timeSeparators = strings.NewReplacer(":", ".", "'", ".", `"`, ".", "+", "")

// NormalizeTime turns a raw lap time or delta cell into "m.ss.fff" separators.
// ok is false for empty cells and the no-time marker.
func NormalizeTime(raw string) (string, bool) {
	s := clean(raw)
	if s == "" || strings.Contains(strings.ToLower(s), noTime) {
		return "", false
	}
	s = strings.Trim(timeSeparators.Replace(s), ".")
	if s == "" {
		return "", false
	}
	return s, true
}

// lapMillis parses "m.ss.fff" or "ss.fff" into milliseconds. The fraction is
// read as a decimal fraction of a second, so ".5" is 500ms.
func lapMillis(s string) (int, error) {
	parts := strings.Split(s, ".")
	var minutes, seconds int
	var frac string
	var err error

	switch len(parts) {
	case 3:
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("lap time %q: minutes: %w", s, err)
		}
		parts = parts[1:]
		fallthrough
	case 2:
		if seconds, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("lap time %q: seconds: %w", s, err)
		}
		frac = parts[1]
	default:
		return 0, fmt.Errorf("lap time %q: unexpected format", s)
	}

	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	ms, err := strconv.Atoi(frac)
	if err != nil {
		return 0, fmt.Errorf("lap time %q: fraction: %w", s, err)
	}
	return (minutes*60+seconds)*1000 + ms, nil
}

// LapMillis parses a normalized lap time into milliseconds.
func LapMillis(lap string) (int, error) {
	return lapMillis(lap)
}

func formatLap(ms int) string {
	return fmt.Sprintf("%d.%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}

// AddMilliseconds adds ms to a normalized lap time.
func AddMilliseconds(lap string, ms int) (string, error) {
	base, err := lapMillis(lap)
	if err != nil {
		return "", err
	}
	return formatLap(base + ms), nil
}

// ResolveDelta turns a normalized "+delta" into an absolute time relative to best.
func ResolveDelta(best, delta string) (string, error) {
	ms, err := lapMillis(delta)
	if err != nil {
		return "", err
	}
	return AddMilliseconds(best, ms)
}

// TrimDriverSuffix drops a hyphenated disambiguation suffix: "Шумахер-мл" -> "Шумахер".
func TrimDriverSuffix(name string) string {
	if i := strings.Index(name, "-"); i != -1 {
		return name[:i]
	}
	return name
}

// MergeSharedLaps folds rows that share a lap time into the earliest of them,
// summing laps. Rows without a time are never merged. The input is not modified.
func MergeSharedLaps(rows []TestingRow) []TestingRow {
	out := make([]TestingRow, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.Time != "" {
			if i, ok := seen[r.Time]; ok {
				out[i].Laps += r.Laps
				continue
			}
			seen[r.Time] = len(out)
		}
		out = append(out, r)
	}
	return out
}

// IsDisqualified reports whether a position cell holds a disqualification marker.
func IsDisqualified(pos string) bool {
	return dsqMarkers[strings.ToUpper(strings.TrimSpace(pos))]
}

// Resequence orders classified finishers first, then disqualified entrants
// numbered after the last finisher, then retirements. The input is not modified.
func Resequence(rows []RaceResultRow) []RaceResultRow {
	var classified, disqualified, retired []RaceResultRow
	last := 0
	for _, r := range rows {
		switch r.Status {
		case StatusDisqualified:
			disqualified = append(disqualified, r)
		case StatusRetired:
			retired = append(retired, r)
		default:
			classified = append(classified, r)
			if r.Position > last {
				last = r.Position
			}
		}
	}

	out := make([]RaceResultRow, 0, len(rows))
	out = append(out, classified...)
	for _, r := range disqualified {
		last++
		r.Position = last
		out = append(out, r)
	}
	return append(out, retired...)
}

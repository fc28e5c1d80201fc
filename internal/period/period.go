// Package period resolves report dates against the days that actually have
// achievement data and measures how far through the month a day is.
package period

import (
	"sort"
	"strings"
	"time"

	"sales-pacing-console/internal/sales"
)

// DateLayout is the day key format used throughout the dashboard.
const DateLayout = "2006-01-02"

// AvailableDates returns the distinct, well formed days present in
// achievements, ascending.
func AvailableDates(achievements []sales.AchievedRow) []string {
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, a := range achievements {
		day, ok := sales.DayKey(a.Days)
		if !ok {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}
	sort.Strings(dates)
	return dates
}

// ResolveEffectiveDate falls back to the latest available day before
// requested when requested has no data. With nothing earlier, requested is
// returned as is and joins will find no achievements.
func ResolveEffectiveDate(requested string, available []string) string {
	for i := len(available) - 1; i >= 0; i-- {
		if available[i] == requested {
			return requested
		}
		if available[i] < requested {
			return available[i]
		}
	}
	return requested
}

// IsFallbackActive reports whether the dashboard is showing an earlier day
// than the one asked for.
func IsFallbackActive(requested, effective string, available []string) bool {
	return requested != effective && len(available) > 0
}

// AutoSelect picks the starting report day after a snapshot change: today
// if any achievement mentions it, otherwise the latest available day.
func AutoSelect(current string, achievements []sales.AchievedRow, available []string, today string) string {
	if len(available) == 0 {
		return current
	}
	for _, a := range achievements {
		if strings.Contains(a.Days, today) {
			return current
		}
	}
	return available[len(available)-1]
}

// Today formats now as a day key in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateLayout)
}

// Shift moves a day key by n calendar days. Malformed keys come back unchanged.
func Shift(day string, n int) string {
	parsed, err := time.Parse(DateLayout, day)
	if err != nil {
		return day
	}
	return parsed.AddDate(0, 0, n).Format(DateLayout)
}

package period

import "time"

// Elapsed is how much of the monthly cycle has passed as of Date.
type Elapsed struct {
	Percent float64
	Label   string
	Date    time.Time
}

// ElapsedNow measures the current month as of the wall clock.
func ElapsedNow() Elapsed {
	return ElapsedAt(time.Now())
}

// ElapsedAt measures day-of-month over days-in-month, as a percentage.
func ElapsedAt(t time.Time) Elapsed {
	days := daysInMonth(t)
	percent := clamp(float64(t.Day())/float64(days)*100, 0, 100)
	return Elapsed{
		Percent: percent,
		Label:   t.Format("Monday, 2 January 2006"),
		Date:    t,
	}
}

// ElapsedOn measures a day key. Malformed keys yield a zero Elapsed.
func ElapsedOn(day string) Elapsed {
	parsed, err := time.Parse(DateLayout, day)
	if err != nil {
		return Elapsed{}
	}
	return ElapsedAt(parsed)
}

func daysInMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

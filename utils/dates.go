// utils/dates.go
package utils

import "time"

// DateLayout is the only date format persisted; range filters compare these
// strings lexicographically.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today is the current local date in DateLayout.
func Today() string {
	return FormatDate(time.Now())
}

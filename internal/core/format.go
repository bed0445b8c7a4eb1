package core

import "time"

// FormatWhen renders a transaction timestamp relative to now: a clock time
// when it happened within the last day on the same calendar day, otherwise a
// short date.
func FormatWhen(ts, now time.Time) string {
	ts = ts.In(now.Location())
	if now.Sub(ts) < 24*time.Hour && ts.Day() == now.Day() {
		return ts.Format("15:04")
	}
	return ts.Format("Jan 2")
}

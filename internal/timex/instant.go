package timex

import (
	"fmt"
	"time"
)

// instantLayout is RFC3339 with fixed-width nanoseconds so that stored
// instants sort chronologically under plain string comparison. The
// outbox relies on this for its FIFO ordering.
const instantLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatInstant renders t as a UTC instant suitable for storage.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

// ParseInstant parses an instant in any RFC3339 flavour.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return t, nil
}

// YearWindow returns the half-open interval [Jan 1 00:00, next Jan 1 00:00)
// of the given year in loc. Totals attribute a log's overlap with this
// window to the year, so a log spanning the boundary is split.
func YearWindow(year int, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
	return start, end
}

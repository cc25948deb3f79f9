package cli

import (
	"fmt"
	"time"
)

// parseWhen parses a user-supplied instant. Accepted forms, tried in
// order: RFC3339, "2006-01-02 15:04" in local time, and "15:04" meaning
// today in local time. An empty string means now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", s, time.Local); err == nil {
		y, m, d := now.In(time.Local).Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func formatWhen(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02 15:04")
}

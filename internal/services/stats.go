package services

import (
	"time"

	"wildlings/internal/models"
	"wildlings/internal/timex"
)

// Totals are derived hour counts for one year and all time.
type Totals struct {
	YearHours    float64
	AllTimeHours float64
}

// ComputeTotals aggregates completed, non-tombstoned logs. The year total
// clips each log against the local-timezone year window, so a log spanning
// New Year's Eve contributes partial hours to each adjacent year.
func ComputeTotals(list []models.Log, year int) Totals {
	return ComputeTotalsIn(list, year, time.Local)
}

// ComputeTotalsIn is ComputeTotals with an explicit location, mainly for
// deterministic tests.
func ComputeTotalsIn(list []models.Log, year int, loc *time.Location) Totals {
	yearStart, yearEnd := timex.YearWindow(year, loc)

	var allTime, yearTotal time.Duration
	for i := range list {
		l := &list[i]
		// Running logs are handled by LiveTotals; tombstones never count.
		if l.Tombstoned() || l.Running() {
			continue
		}
		allTime += clampedBetween(l.StartAt, *l.EndAt)
		yearTotal += overlap(l.StartAt, *l.EndAt, yearStart, yearEnd)
	}

	return Totals{YearHours: yearTotal.Hours(), AllTimeHours: allTime.Hours()}
}

// LiveTotals adds the running log's elapsed time (clipped against the year
// window) on top of ComputeTotalsIn. A completed or tombstoned active log
// is never double counted.
func LiveTotals(list []models.Log, year int, loc *time.Location, activeLogID *string, now time.Time) Totals {
	totals := ComputeTotalsIn(list, year, loc)
	if activeLogID == nil {
		return totals
	}

	var active *models.Log
	for i := range list {
		if list[i].ID == *activeLogID {
			active = &list[i]
			break
		}
	}
	if active == nil || !active.Running() || active.Tombstoned() {
		return totals
	}

	yearStart, yearEnd := timex.YearWindow(year, loc)
	totals.AllTimeHours += clampedBetween(active.StartAt, now).Hours()
	totals.YearHours += overlap(active.StartAt, now, yearStart, yearEnd).Hours()
	return totals
}

// clampedBetween is end-start; a malformed interval counts as zero.
func clampedBetween(start, end time.Time) time.Duration {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

func overlap(start, end, winStart, winEnd time.Time) time.Duration {
	if start.Before(winStart) {
		start = winStart
	}
	if end.After(winEnd) {
		end = winEnd
	}
	return clampedBetween(start, end)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wildlings/internal/services"
)

func (a *App) Stats(ctx context.Context, args []string) error {
	now := time.Now()
	year := now.In(time.Local).Year()
	if len(args) > 0 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
		year = y
	}

	list, err := a.store.Logs.List(ctx)
	if err != nil {
		return err
	}
	md, err := a.store.Metadata.Get(ctx)
	if err != nil {
		return err
	}

	totals := services.LiveTotals(list, year, time.Local, md.ActiveLogID, now)
	fmt.Fprintf(a.out, "%d: %.1fh\n", year, totals.YearHours)
	fmt.Fprintf(a.out, "All time: %.1fh\n", totals.AllTimeHours)

	if md.YearlyGoalHours != nil && md.YearlyGoalYear != nil && *md.YearlyGoalYear == year && *md.YearlyGoalHours > 0 {
		pct := totals.YearHours / *md.YearlyGoalHours * 100
		fmt.Fprintf(a.out, "Goal: %.1f of %.0fh (%.0f%%)\n", totals.YearHours, *md.YearlyGoalHours, pct)
	}
	return nil
}

func (a *App) Goal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: goal <hours> [year]")
	}

	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil || hours <= 0 {
		return fmt.Errorf("invalid hours %q", args[0])
	}

	year := time.Now().In(time.Local).Year()
	if len(args) > 1 {
		y, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[1])
		}
		year = y
	}

	if err := a.logs.SetYearlyGoal(ctx, year, hours); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Goal for %d set to %.0fh\n", year, hours)
	return nil
}

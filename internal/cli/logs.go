package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

func (a *App) AddLog(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: log <start> <end> [note]")
	}
	now := time.Now()

	startAt, err := parseWhen(args[0], now)
	if err != nil {
		return err
	}
	endAt, err := parseWhen(args[1], now)
	if err != nil {
		return err
	}

	var note *string
	if len(args) > 2 {
		n := strings.Join(args[2:], " ")
		note = &n
	}

	l, err := a.logs.CreateManual(ctx, startAt, &endAt, note, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged %s to %s (%s)\n", formatWhen(l.StartAt), formatWhen(*l.EndAt), l.ID)
	a.trySync(ctx)
	return nil
}

// EditLog holds the editing mark over the rewrite so a concurrent pull
// cannot clobber the log mid-edit.
func (a *App) EditLog(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: edit <id> <start> <end> [note]")
	}
	logID := args[0]
	now := time.Now()

	startAt, err := parseWhen(args[1], now)
	if err != nil {
		return err
	}
	endAt, err := parseWhen(args[2], now)
	if err != nil {
		return err
	}

	var note *string
	if len(args) > 3 {
		n := strings.Join(args[3:], " ")
		note = &n
	}

	if err := a.logs.BeginEditing(ctx, logID); err != nil {
		return err
	}
	defer func() {
		if err := a.logs.EndEditing(ctx); err != nil {
			a.log.Warn(ctx, "failed to clear editing mark", "error", err)
		}
	}()

	l, err := a.logs.Update(ctx, logID, startAt, &endAt, note, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", l.ID)
	a.trySync(ctx)
	return nil
}

func (a *App) RemoveLog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: rm <id>")
	}

	if err := a.logs.Delete(ctx, args[0], time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", args[0])
	a.trySync(ctx)
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.logs.ListVisible(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No logs yet.")
		return nil
	}

	for i := range list {
		l := &list[i]
		end := "running"
		hours := ""
		if l.EndAt != nil {
			end = formatWhen(*l.EndAt)
			hours = fmt.Sprintf("  %.2fh", l.EndAt.Sub(l.StartAt).Hours())
		}
		note := ""
		if l.Note != nil {
			note = "  " + *l.Note
		}
		fmt.Fprintf(a.out, "%s  %s to %s%s%s\n", l.ID, formatWhen(l.StartAt), end, hours, note)
	}
	return nil
}

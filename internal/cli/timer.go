package cli

import (
	"context"
	"errors"
	"fmt"
	"time"
)

func (a *App) Start(ctx context.Context, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	startAt, err := parseWhen(arg, time.Now())
	if err != nil {
		return err
	}

	l, err := a.timers.Start(ctx, startAt)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Timer started at %s (%s)\n", formatWhen(l.StartAt), l.ID)
	a.trySync(ctx)
	return nil
}

func (a *App) Stop(ctx context.Context, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	endAt, err := parseWhen(arg, time.Now())
	if err != nil {
		return err
	}

	l, err := a.timers.Stop(ctx, endAt)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Stopped: %s to %s (%.2fh)\n",
		formatWhen(l.StartAt), formatWhen(*l.EndAt), l.EndAt.Sub(l.StartAt).Hours())
	a.trySync(ctx)
	return nil
}

func (a *App) Adjust(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: adjust <time>")
	}
	now := time.Now()
	startAt, err := parseWhen(args[0], now)
	if err != nil {
		return err
	}

	l, err := a.timers.AdjustStart(ctx, startAt, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Timer now running since %s\n", formatWhen(l.StartAt))
	a.trySync(ctx)
	return nil
}

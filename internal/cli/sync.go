package cli

import (
	"context"
	"fmt"
	"time"

	"wildlings/internal/netx"
)

// Sync runs one full cycle, waiting briefly for the server to answer
// first so a cold start does not immediately land in backoff.
func (a *App) Sync(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := netx.WaitForServer(probeCtx, a.client, time.Second, 3); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	outcome, err := a.engine.SyncOnce(ctx)
	if err != nil {
		return err
	}
	if outcome.Skipped {
		fmt.Fprintln(a.out, "Sync skipped (backoff in effect or already running).")
		return nil
	}
	fmt.Fprintf(a.out, "Synced: pushed %d, pulled %d\n", outcome.Pushed, outcome.Pulled)
	return nil
}

// Watch runs the background scheduler until ctx is canceled.
func (a *App) Watch(ctx context.Context) error {
	fmt.Fprintf(a.out, "Watching, syncing every %s. Ctrl-C to stop.\n", a.config.SyncInterval)
	a.scheduler.NotifyChange()
	a.scheduler.Run(ctx)
	return nil
}

// Package netx holds small network helpers shared by the CLI commands.
package netx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Pinger reports whether the sync server answers at all. Any HTTP
// response counts; only transport failures are errors.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForServer polls the server until it answers, ctx expires or the
// attempts run out. Probes are spaced by interval without backoff since
// this is a short pre-flight check, not the sync retry schedule.
func WaitForServer(ctx context.Context, p Pinger, interval time.Duration, attempts uint64) error {
	if interval <= 0 {
		interval = time.Second
	}
	backoff := retry.WithMaxRetries(attempts, retry.NewConstant(interval))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

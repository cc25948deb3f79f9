// Package cli implements the wildlings command line surface: timer
// commands, log management, stats and sync.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"wildlings/internal/config"
	"wildlings/internal/logging"
	"wildlings/internal/services"
	"wildlings/internal/store"
	"wildlings/internal/sync"
)

// App wires the store, services and sync engine behind the subcommands.
type App struct {
	config    *config.Config
	log       logging.Logger
	store     *store.Store
	timers    services.TimerService
	logs      services.LogService
	client    *sync.Client
	engine    *sync.Engine
	scheduler *sync.Scheduler
	out       io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := sync.NewClient(cfg.ServerBaseURL, cfg.SyncToken, nil)
	engine := sync.NewEngine(st, client, log, sync.Options{BatchSize: cfg.BatchSize})
	scheduler := sync.NewScheduler(engine, log, cfg.SyncInterval, cfg.SyncDebounce)

	return &App{
		config:    cfg,
		log:       log,
		store:     st,
		timers:    services.NewTimerService(st),
		logs:      services.NewLogService(st),
		client:    client,
		engine:    engine,
		scheduler: scheduler,
		out:       os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// Run dispatches one subcommand. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "start":
		return a.Start(ctx, rest)
	case "stop":
		return a.Stop(ctx, rest)
	case "adjust":
		return a.Adjust(ctx, rest)
	case "log":
		return a.AddLog(ctx, rest)
	case "edit":
		return a.EditLog(ctx, rest)
	case "rm":
		return a.RemoveLog(ctx, rest)
	case "list":
		return a.List(ctx)
	case "stats":
		return a.Stats(ctx, rest)
	case "goal":
		return a.Goal(ctx, rest)
	case "sync":
		return a.Sync(ctx)
	case "watch":
		return a.Watch(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: wildlings <command> [args]

Commands:
  start [time]             start the timer (default: now)
  stop [time]              stop the timer (default: now)
  adjust <time>            move the running timer's start
  log <start> <end> [note] record a completed interval
  edit <id> <start> <end> [note]
  rm <id>                  delete a log
  list                     list visible logs
  stats [year]             hours for the year and all time
  goal <hours> [year]      set the yearly goal
  sync                     run one sync cycle
  watch                    sync in the background until interrupted`)
}

// trySync runs one opportunistic cycle after a local mutation. Failures
// only feed the backoff schedule; the mutation itself already committed.
func (a *App) trySync(ctx context.Context) {
	if _, err := a.engine.SyncOnce(ctx); err != nil {
		a.log.Debug(ctx, "opportunistic sync failed", "error", err)
	}
}

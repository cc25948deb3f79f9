package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wildlings/internal/cli"
	"wildlings/internal/config"
	"wildlings/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	level := slog.LevelInfo
	if os.Getenv("WILDLINGS_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, subcommandArgs(os.Args[1:])); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// subcommandArgs strips the configuration flags handled by the config
// package so the dispatcher only sees the subcommand and its arguments.
func subcommandArgs(args []string) []string {
	valueFlags := map[string]struct{}{
		"-a": {}, "-f": {}, "-t": {}, "-i": {}, "-b": {}, "-c": {}, "-config": {},
	}

	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if _, ok := valueFlags[arg]; ok {
			i++
			continue
		}
		if len(arg) > 0 && arg[0] == '-' {
			continue
		}
		out = append(out, arg)
	}
	return out
}

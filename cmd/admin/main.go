package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hkn-admin/internal/config"
	"hkn-admin/internal/lock"
	svc "hkn-admin/internal/service"
	"hkn-admin/internal/storage/postgres"
	"hkn-admin/pkg/handlers/slogpretty"
	"hkn-admin/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := flags.String("config", "", "path to the yaml config (default $CONFIG_PATH or config/config.yaml)")
	jsonOut := flags.Bool("json", false, "print results and errors as JSON")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [-config FILE] [-json] COMMAND [ARGS]\n\n", os.Args[0])
		flags.PrintDefaults()
		fmt.Fprintln(flags.Output())
		printUsage(flags.Output())
	}
	_ = flags.Parse(os.Args[1:])

	cfg := config.MustLoad(*configPath)

	log := setupLogger(cfg.Env)

	log.Debug("Config loaded", slog.String("env", cfg.Env))

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker := setupLocker(cfg.RedisAddr, log)

	settings := svc.NewPropertySettings(storage, svc.Settings{
		TutoringStart: cfg.Tutoring.Start,
		TutoringEnd:   cfg.Tutoring.End,
		Semester:      cfg.Tutoring.Semester,
	})

	service := svc.NewService(log, storage, locker, settings).WithLockTTL(cfg.LockTTL)

	cli := &commandLine{
		svc:      service,
		migrator: storage,
		log:      log,
		out:      os.Stdout,
		json:     *jsonOut,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cli.run(ctx, append([]string{os.Args[0]}, flags.Args()...))
	stop()

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	}
	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	}

	if err != nil {
		if !errors.Is(err, errHelp) {
			log.Debug("Command failed", sl.Err(err))
			cli.reportError(err)
		}
		os.Exit(1)
	}
}

// setupLocker prefers Redis and falls back to an in-process lock when no
// address is configured or the server cannot be reached.
func setupLocker(addr string, log *slog.Logger) lock.Locker {
	if addr == "" {
		log.Debug("No redis address configured, using in-process lock")
		return lock.NewMemoryLock()
	}

	locker, err := lock.NewRedisLock(addr)
	if err != nil {
		log.Warn("Failed to init redis lock, using in-process lock", sl.Err(err))
		return lock.NewMemoryLock()
	}

	return locker
}

// Logs go to stderr so command output on stdout stays machine readable.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stderr)

	return slog.New(handler)
}

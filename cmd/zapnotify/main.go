// Command zapnotify sends before and after notifications for recurring
// schedules. It runs the notification tick once per minute, or once with
// -once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cpiprint/zap-notify/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML configuration file")
		envFile    = flag.String("env", ".env", "path to a .env file; missing files are ignored")
		once       = flag.Bool("once", false, "run a single notification tick and exit")
		migrate    = flag.Bool("migrate", false, "create the database tables and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *envFile, *once, *migrate); err != nil {
		slog.Error("zapnotify failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, envFile string, once, migrate bool) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	switch {
	case migrate:
		logger.Info("database migrated")
		return nil
	case once:
		return a.runOnce(ctx)
	}

	if configPath != "" {
		m := config.NewManager(configPath, config.WithManagerLogger(logger))
		if _, err := m.Load(); err != nil {
			return err
		}
		sub := m.Subscribe(1)
		defer m.Unsubscribe(sub)
		go a.followConfig(ctx, sub)
		go func() {
			if err := m.Watch(ctx); err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	return a.serve(ctx)
}

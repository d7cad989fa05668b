package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cpiprint/zap-notify/internal/config"
	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/delivery"
	"github.com/cpiprint/zap-notify/pkg/events"
	"github.com/cpiprint/zap-notify/pkg/notification"
	"github.com/cpiprint/zap-notify/pkg/runner"
	"github.com/cpiprint/zap-notify/pkg/storage"
	"github.com/cpiprint/zap-notify/pkg/tick"
)

type app struct {
	logger   *slog.Logger
	store    *storage.GormStorage
	settings *core.Settings
	bus      *events.Bus
	delivery *delivery.Service
	runner   *runner.Runner
}

func openDatabase(cfg *config.Config) (gorm.Dialector, storage.PoolConfig) {
	if cfg.IsPostgres() {
		return postgres.Open(cfg.Database.DSN), cfg.Database.Pool
	}
	return sqlite.Open(cfg.Database.DSN), storage.SQLitePoolConfig()
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	dialector, pool := openDatabase(cfg)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := storage.NewGormStorageWithPool(db, storage.WithPoolConfig(pool))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &app{
		logger:   log,
		store:    store,
		settings: core.NewSettings(cfg.Notifications),
		bus:      events.NewBus(),
	}
	a.delivery = delivery.NewService(
		delivery.Workers(cfg.Delivery.Workers),
		delivery.QueueSize(cfg.Delivery.QueueSize),
		delivery.RateLimit(cfg.Delivery.RatePerSec, cfg.Delivery.Burst),
		delivery.WithRetry(cfg.Delivery.Retry),
		delivery.WithLogger(log),
	)
	if err := a.registerSenders(cfg); err != nil {
		return nil, err
	}

	registry := notification.NewRegistry()
	if err := notification.RegisterDefaults(registry, notification.DefaultsOptions{
		Channels:    notification.ChannelsFrom(a.settings),
		ScheduleURL: scheduleURL(cfg.AppURL),
	}); err != nil {
		return nil, err
	}
	dispatcher := notification.NewDispatcher(registry, a.delivery,
		notification.WithSettings(a.settings),
		notification.WithTargetResolver(notification.MetadataTargets),
		notification.WithLogger(log),
	)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	ticker := tick.New(store, store, dispatcher,
		tick.WithLocation(loc),
		tick.WithEmitter(a.bus),
		tick.WithLogger(log),
		tick.WithClaimFirst(cfg.Tick.ClaimFirst),
		tick.WithConcurrency(cfg.Tick.Concurrency),
	)
	a.runner = runner.New(ticker,
		runner.WithSpec(cfg.Tick.Spec),
		runner.WithLocation(loc),
		runner.WithTimeout(cfg.Tick.Timeout),
		runner.WithLogger(log),
	)
	return a, nil
}

func (a *app) registerSenders(cfg *config.Config) error {
	a.delivery.Register(core.ChannelLog, delivery.NewLogSender(a.logger))
	a.delivery.Register(core.ChannelDatabase, delivery.NewDatabaseSender(a.store))
	a.delivery.Register(core.ChannelBroadcast, delivery.NewBroadcastSender(a.bus))
	if cfg.Telegram.Token != "" {
		bot, err := delivery.NewTelegramBot(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		a.delivery.Register(core.ChannelTelegram, delivery.NewTelegramSender(delivery.NewTelebotAdapter(bot)))
	}
	if cfg.Mail.Host != "" {
		a.delivery.Register(core.ChannelMail, delivery.NewMailSender(cfg.Mail))
	}
	a.logger.Debug("delivery channels registered", "channels", a.delivery.Channels())
	return nil
}

func scheduleURL(base string) func(*core.Schedule) string {
	if base == "" {
		return nil
	}
	base = strings.TrimRight(base, "/")
	return func(s *core.Schedule) string {
		return fmt.Sprintf("%s/schedules/%d", base, s.ID)
	}
}

// runOnce runs one tick and drains queued deliveries before returning.
func (a *app) runOnce(ctx context.Context) error {
	deliveryCtx, stopDelivery := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.delivery.Start(deliveryCtx) }()

	report, err := a.runner.RunOnce(ctx)
	stopDelivery()
	if derr := <-done; derr != nil && !errors.Is(derr, context.Canceled) {
		a.logger.Warn("delivery shutdown", "error", derr)
	}
	if err != nil {
		return err
	}
	stats := a.delivery.Stats()
	a.logger.Info("notification tick finished",
		"sent", report.Count(tick.StatusSent),
		"skipped", report.Count(tick.StatusSkipped),
		"failed", report.Count(tick.StatusFailed),
		"delivered", stats.Sent,
		"delivery_failures", stats.Failed,
	)
	return nil
}

// serve runs the delivery workers and the cron trigger until ctx is done.
func (a *app) serve(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, s := range []core.Starter{a.delivery, a.runner} {
		wg.Add(1)
		go func(i int, s core.Starter) {
			defer wg.Done()
			if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
				errs[i] = err
			}
		}(i, s)
	}
	wg.Wait()
	a.logger.Info("zapnotify stopped")
	return errors.Join(errs...)
}

// followConfig applies reloaded notification settings.
func (a *app) followConfig(ctx context.Context, sub <-chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			a.settings.Store(cfg.Notifications)
			a.logger.Info("notification settings reloaded",
				"enabled", cfg.Notifications.Enabled,
				"queue", cfg.Notifications.Queue,
				"default_channels", cfg.Notifications.DefaultChannels,
			)
		}
	}
}

func (a *app) close() {
	if sqlDB, err := a.store.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}

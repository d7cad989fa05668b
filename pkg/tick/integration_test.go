package tick

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/delivery"
	"github.com/cpiprint/zap-notify/pkg/notification"
	"github.com/cpiprint/zap-notify/pkg/storage"
)

func TestTick_GormEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store, err := storage.NewGormStorageWithPool(db, storage.WithPoolConfig(storage.SQLitePoolConfig()))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveSchedule(ctx, nightShift(1)))

	settings := core.NewSettings(core.Config{
		Enabled:         true,
		Queue:           false,
		DefaultChannels: []core.Channel{core.ChannelDatabase},
	})
	registry := notification.NewRegistry()
	require.NoError(t, notification.RegisterDefaults(registry, notification.DefaultsOptions{
		Channels: notification.ChannelsFrom(settings),
	}))
	svc := delivery.NewService(delivery.DisableRetry(), delivery.WithLogger(slog.Default()))
	svc.Register(core.ChannelDatabase, delivery.NewDatabaseSender(store))
	d := notification.NewDispatcher(registry, svc, notification.WithSettings(settings))

	clock := &clockAt{now: at(15, 21, 0)}
	tk := New(store, store, d, WithClock(clock))

	for range 2 {
		_, err := tk.Run(ctx)
		require.NoError(t, err)
	}

	entries, err := store.LedgerEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.NotifyBefore, entries[0].Type)

	stored, err := store.Notifications(ctx, core.Target{Type: "user", ID: "42"}, false, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, notification.KindStarting, stored[0].Type)
	assert.Equal(t, "Night shift", stored[0].Data["schedule_name"])
}

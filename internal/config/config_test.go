package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpiprint/zap-notify/pkg/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Notifications.Enabled)
	assert.True(t, cfg.Notifications.Queue)
	assert.Equal(t, []core.Channel{core.ChannelMail, core.ChannelDatabase}, cfg.Notifications.DefaultChannels)
	assert.False(t, cfg.IsPostgres())
	assert.False(t, cfg.IsProduction())
}

func TestParse_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "zap.yaml", `
environment: Production
database:
  dsn: postgres://zap@localhost/zap
  pool:
    max_open_conns: 20
notifications:
  enabled: true
  queue: false
  default_channels: [database, telegram]
tick:
  timezone: UTC
  timeout: 30s
  claim_first: true
delivery:
  retry:
    max_attempts: 5
mail:
  host: smtp.example.com
  timeout: 10s
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.IsPostgres())
	assert.Equal(t, 20, cfg.Database.Pool.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.Pool.MaxIdleConns, "unset keys keep defaults")
	assert.False(t, cfg.Notifications.Queue)
	assert.Equal(t, []core.Channel{core.ChannelDatabase, core.ChannelTelegram}, cfg.Notifications.DefaultChannels)
	assert.Equal(t, 30*time.Second, cfg.Tick.Timeout)
	assert.True(t, cfg.Tick.ClaimFirst)
	assert.Equal(t, 5, cfg.Delivery.Retry.MaxAttempts)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParse_UnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "zap.yaml", "notifcations:\n  enabled: false\n")
	_, err := Parse(path)
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"channel":  "notifications:\n  default_channels: [pigeon]\n",
		"timezone": "tick:\n  timezone: Mars/Olympus\n",
		"spec":     "tick:\n  spec: every minute\n",
		"dsn":      "database:\n  dsn: \"\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeFile(t, dir, name+".yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ZAP_NOTIFICATIONS_ENABLED", "false")
	t.Setenv("ZAP_NOTIFICATIONS_CHANNELS", "Log, broadcast")
	t.Setenv("ZAP_DATABASE_DSN", "/tmp/zap.db")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ZAP_MAIL_PORT", "2525")

	cfg, err := Parse("")
	require.NoError(t, err)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, []core.Channel{core.ChannelLog, core.ChannelBroadcast}, cfg.Notifications.DefaultChannels)
	assert.Equal(t, "/tmp/zap.db", cfg.Database.DSN)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 2525, cfg.Mail.Port)

	t.Setenv("ZAP_NOTIFICATIONS_QUEUE", "maybe")
	_, err = Parse("")
	assert.ErrorContains(t, err, "ZAP_NOTIFICATIONS_QUEUE")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "ZAP_LOG_LEVEL=DEBUG\n")
	t.Setenv("ZAP_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("ZAP_LOG_LEVEL"))

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

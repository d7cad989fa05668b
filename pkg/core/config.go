package core

import "sync/atomic"

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelMail      Channel = "mail"
	ChannelDatabase  Channel = "database"
	ChannelBroadcast Channel = "broadcast"
	ChannelTelegram  Channel = "telegram"
	ChannelLog       Channel = "log"
)

// Config holds the notification options.
type Config struct {
	// Enabled is the global switch for all before/after notifications.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Queue selects queued delivery over immediate delivery.
	Queue bool `yaml:"queue" json:"queue"`
	// DefaultChannels are the channels the built-in notifications use.
	DefaultChannels []Channel `yaml:"default_channels" json:"default_channels"`
}

// DefaultConfig returns the default notification options.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Queue:           true,
		DefaultChannels: []Channel{ChannelMail, ChannelDatabase},
	}
}

// Channels returns the default channels, falling back to mail and database.
func (c Config) Channels() []Channel {
	if len(c.DefaultChannels) == 0 {
		return DefaultConfig().DefaultChannels
	}
	out := make([]Channel, len(c.DefaultChannels))
	copy(out, c.DefaultChannels)
	return out
}

// Settings is a concurrency-safe holder of the current Config.
type Settings struct {
	cfg atomic.Pointer[Config]
}

// NewSettings returns Settings initialized with cfg.
func NewSettings(cfg Config) *Settings {
	s := &Settings{}
	s.Store(cfg)
	return s
}

// Load returns the current Config. A nil Settings yields DefaultConfig.
func (s *Settings) Load() Config {
	if s == nil {
		return DefaultConfig()
	}
	if c := s.cfg.Load(); c != nil {
		return *c
	}
	return DefaultConfig()
}

// Store replaces the current Config.
func (s *Settings) Store(cfg Config) {
	s.cfg.Store(&cfg)
}

package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	yaml "go.yaml.in/yaml/v3"
)

// DefaultDebounce delays reloads so editors finish writing first.
const DefaultDebounce = 250 * time.Millisecond

// Manager holds the current configuration and republishes it when the
// file changes.
type Manager struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cfg  *Config
	last []byte

	subsMu sync.Mutex
	subs   []chan *Config
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithDebounce sets the reload delay after a file event.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) { m.debounce = d }
}

// NewManager creates a Manager for path.
func NewManager(path string, opts ...ManagerOption) *Manager {
	m := &Manager{path: path, logger: slog.Default(), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load parses the file and makes it current.
func (m *Manager) Load() (*Config, error) {
	cfg, err := Parse(m.path)
	if err != nil {
		return nil, err
	}
	m.commit(cfg)
	return cfg, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Subscribe returns a channel receiving every reloaded configuration.
// A slow subscriber only ever misses older versions.
func (m *Manager) Subscribe(buffer int) <-chan *Config {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Config, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (m *Manager) Unsubscribe(ch <-chan *Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, sub := range m.subs {
		if sub == ch {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// commit stores cfg and reports whether it differs from the previous one.
func (m *Manager) commit(cfg *Config) bool {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		b = nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := b == nil || !bytes.Equal(b, m.last)
	m.cfg = cfg
	m.last = b
	return changed
}

func (m *Manager) publish(cfg *Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- cfg:
			continue
		default:
		}
		// Full: drop the oldest and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
			m.logger.Debug("config update dropped", "queue_len", len(ch))
		}
	}
}

// Reload parses the file and publishes it when it changed.
func (m *Manager) Reload() error {
	cfg, err := Parse(m.path)
	if err != nil {
		return err
	}
	if !m.commit(cfg) {
		m.logger.Debug("config unchanged", "path", m.path)
		return nil
	}
	m.publish(cfg)
	m.logger.Info("config reloaded", "path", m.path)
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx is
// cancelled. The directory is watched so editors that replace the file are
// handled.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer w.Close()

	dir, file := filepath.Dir(m.path), filepath.Base(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config watch %s: %w", dir, err)
	}
	m.logger.Debug("config watcher started", "path", m.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(m.debounce, func() {
			if err := m.Reload(); err != nil {
				m.logger.Warn("config reload failed", "path", m.path, "error", err)
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("config watch: event channel closed")
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("config watch: error channel closed")
			}
			m.logger.Warn("config watch error", "error", err)
		}
	}
}

package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mattjoyce/shade/internal/theme"
)

const probeKey = "__theme_test__"

// DefaultTimeout bounds every KV call made by a Manager.
const DefaultTimeout = 2 * time.Second

// Manager persists the theme preference through a KV medium. It satisfies
// theme.PreferenceStore: every failure is logged and swallowed.
type Manager struct {
	kv        KV
	logger    *slog.Logger
	timeout   time.Duration
	available bool
}

// NewManager wraps kv. A nil kv behaves like a medium that always fails the
// probe.
func NewManager(kv KV, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{kv: kv, logger: logger, timeout: DefaultTimeout}
}

// Available reports whether the last Probe succeeded.
func (m *Manager) Available() bool { return m.available }

// Probe writes and removes a test key. Any failure leaves the manager
// unavailable, after which Load returns the fallback and Save does nothing.
func (m *Manager) Probe() {
	m.available = false
	if m.kv == nil {
		m.logger.Warn("preference storage is not available, preferences will not be persisted")
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.kv.Set(ctx, probeKey, "test"); err != nil {
		m.logger.Warn("preference storage is not available, preferences will not be persisted", "error", err)
		return
	}
	if err := m.kv.Delete(ctx, probeKey); err != nil {
		m.logger.Warn("preference storage is not available, preferences will not be persisted", "error", err)
		return
	}
	m.available = true
}

// Load returns the stored preference under key, or fallback when nothing
// valid is stored. An invalid stored value is removed.
func (m *Manager) Load(key string, fallback theme.Theme) theme.Theme {
	if !m.available {
		return fallback
	}
	ctx, cancel := m.ctx()
	defer cancel()

	raw, err := m.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback
	}
	if err != nil {
		m.logger.Warn("failed to load theme preference", "key", key, "error", err)
		return fallback
	}

	t, err := theme.ParseTheme(raw)
	if err != nil {
		m.logger.Debug("removing invalid stored theme preference", "key", key, "value", raw)
		if err := m.kv.Delete(ctx, key); err != nil {
			m.logger.Warn("failed to load theme preference", "key", key, "error", err)
		}
		return fallback
	}
	return t
}

// Save stores t under key. Failures are logged only.
func (m *Manager) Save(key string, t theme.Theme) {
	if !m.available {
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.kv.Set(ctx, key, string(t)); err != nil {
		m.logger.Warn("failed to save theme preference", "key", key, "theme", t, "error", err)
	}
}

func (m *Manager) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_theme.go -package=mocks github.com/mattjoyce/shade/internal/theme PreferenceStore,SystemWatcher,Applier

// PreferenceStore persists the user's preference. Implementations swallow
// their own failures.
type PreferenceStore interface {
	Probe()
	Load(key string, fallback Theme) Theme
	Save(key string, theme Theme)
}

// SystemWatcher reports the operating system's dark-mode signal.
type SystemWatcher interface {
	Attach(enableSystem bool)
	CurrentPreference() Resolved
	OnChange(fn func(Resolved)) (cancel func())
	Detach()
}

// Applier marks the resolved theme on the document.
type Applier interface {
	Apply(resolved Resolved, cfg Config)
}

// Dispatcher runs fn on the goroutine that owns the engine. Watcher
// callbacks are routed through it.
type Dispatcher func(fn func())

func inline(fn func()) { fn() }

var (
	ErrDestroyed   = errors.New("theme engine has been destroyed")
	ErrForced      = errors.New("theme cannot be changed while a forced theme is active")
	ErrUnsupported = errors.New("theme is not supported")
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDispatcher routes watcher callbacks through d.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		if d != nil {
			e.dispatch = d
		}
	}
}

// Engine owns the preference and system-preference state and keeps the
// document and the store in step with it.
//
// An Engine is not safe for concurrent use. Hosts serialise calls, and
// supply a Dispatcher so watcher callbacks join the same sequence.
type Engine struct {
	cfg      Config
	store    PreferenceStore
	watcher  SystemWatcher
	applier  Applier
	logger   *slog.Logger
	dispatch Dispatcher

	state   State
	execCtx ExecutionContext

	preference *Signal[Theme]
	system     *Signal[Resolved]
	resolved   *Signal[Resolved]

	lastApplied Resolved
	effects     []func()
	unwatch     func()
}

// NewEngine builds an engine in the uninitialized state.
func NewEngine(cfg Config, store PreferenceStore, watcher SystemWatcher, applier Applier, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		store:      store,
		watcher:    watcher,
		applier:    applier,
		logger:     slog.Default(),
		dispatch:   inline,
		preference: NewSignal(System),
		system:     NewSignal(ResolvedLight),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolved = NewSignal(e.resolve())
	e.preference.Subscribe(func(Theme) { e.resolved.Set(e.resolve()) })
	e.system.Subscribe(func(Resolved) { e.resolved.Set(e.resolve()) })
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns the lifecycle position.
func (e *Engine) State() State { return e.state }

// Initialized reports whether Initialize has completed.
func (e *Engine) Initialized() bool { return e.state == StateReady }

// Destroyed reports whether Destroy has been called.
func (e *Engine) Destroyed() bool { return e.state == StateDestroyed }

// Preference returns the user's current choice.
func (e *Engine) Preference() Theme { return e.preference.Get() }

// SystemPreference returns the latest operating-system signal.
func (e *Engine) SystemPreference() Resolved { return e.system.Get() }

// ResolvedTheme returns the theme that is (or will be) applied.
func (e *Engine) ResolvedTheme() Resolved { return e.resolved.Get() }

// IsDark reports whether the resolved theme is dark.
func (e *Engine) IsDark() bool { return e.ResolvedTheme() == ResolvedDark }

// IsLight reports whether the resolved theme is light.
func (e *Engine) IsLight() bool { return e.ResolvedTheme() == ResolvedLight }

// IsSystemSelected reports whether the user chose to follow the system.
func (e *Engine) IsSystemSelected() bool { return e.Preference() == System }

// IsForced reports whether a forced theme is configured.
func (e *Engine) IsForced() bool { return e.cfg.Forced() }

// Subscribe registers fn to be called whenever the resolved theme changes.
func (e *Engine) Subscribe(fn func(Resolved)) (cancel func()) {
	return e.resolved.Subscribe(fn)
}

// OnPreferenceChange registers fn to be called whenever the preference changes.
func (e *Engine) OnPreferenceChange(fn func(Theme)) (cancel func()) {
	return e.preference.Subscribe(fn)
}

func (e *Engine) resolve() Resolved {
	return resolve(e.cfg, e.preference.Get(), e.system.Get())
}

func resolve(cfg Config, preference Theme, system Resolved) Resolved {
	if cfg.ForcedTheme != "" && cfg.ForcedTheme != System {
		return Resolved(cfg.ForcedTheme)
	}
	if preference == System {
		if cfg.EnableSystem {
			return system
		}
		return ResolvedLight
	}
	return Resolved(preference)
}

// Initialize loads the stored preference, starts watching the system signal
// and applies the resolved theme for the first time. In ServerRender it uses
// the default theme and a light system signal so the rendered markup matches
// the first interactive render.
func (e *Engine) Initialize(ec ExecutionContext) {
	switch e.state {
	case StateReady, StateInitializing:
		e.logger.Warn("theme engine is already initialized")
		return
	case StateDestroyed:
		e.logger.Warn("theme engine has been destroyed and cannot be initialized")
		return
	}

	e.state = StateInitializing
	e.execCtx = ec

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("failed to initialize theme engine", "error", fmt.Sprint(r))
			e.preference.Set(Light)
			e.system.Set(ResolvedLight)
			e.state = StateReady
		}
	}()

	if ec == Interactive {
		e.store.Probe()
		e.preference.Set(e.store.Load(e.cfg.StorageKey, e.cfg.DefaultTheme))
		e.watcher.Attach(e.cfg.EnableSystem)
		e.system.Set(e.watcher.CurrentPreference())
		e.unwatch = e.watcher.OnChange(e.handleSystemChange)
	} else {
		e.preference.Set(e.cfg.DefaultTheme)
		e.system.Set(ResolvedLight)
	}

	e.apply(e.resolve())
	e.persist(e.preference.Get())
	e.effects = append(e.effects,
		e.resolved.Subscribe(e.applyIfChanged),
		e.preference.Subscribe(e.persist),
	)
	e.state = StateReady
	e.logger.Debug("theme engine initialized",
		"context", ec.String(),
		"preference", e.preference.Get(),
		"system", e.system.Get(),
		"resolved", e.resolved.Get(),
	)
}

func (e *Engine) handleSystemChange(r Resolved) {
	e.dispatch(func() {
		if e.state == StateDestroyed {
			return
		}
		e.system.Set(r)
	})
}

func (e *Engine) applyIfChanged(r Resolved) {
	if r != e.lastApplied {
		e.apply(r)
	}
}

func (e *Engine) apply(r Resolved) {
	if e.state == StateDestroyed {
		return
	}
	e.applier.Apply(r, e.cfg)
	e.lastApplied = r
}

func (e *Engine) persist(t Theme) {
	if e.execCtx != Interactive || e.cfg.Forced() || e.state == StateDestroyed {
		return
	}
	e.store.Save(e.cfg.StorageKey, t)
}

// SetTheme changes the preference. It is rejected when the engine is
// destroyed, a theme is forced, or t is not currently selectable.
func (e *Engine) SetTheme(t Theme) error {
	if e.state == StateDestroyed {
		e.logger.Warn("theme engine has been destroyed")
		return ErrDestroyed
	}
	if e.cfg.Forced() {
		e.logger.Warn("theme cannot be changed while forced theme is active", "forced", e.cfg.ForcedTheme)
		return ErrForced
	}
	themes := e.cfg.Themes()
	if !containsTheme(themes, t) {
		e.logger.Warn("theme is not supported", "theme", t, "available", joinThemes(themes))
		return fmt.Errorf("%w: %q (available: %s)", ErrUnsupported, t, joinThemes(themes))
	}
	e.preference.Set(t)
	return nil
}

// Toggle advances the preference through light, dark and (when enabled)
// system, wrapping back to light.
func (e *Engine) Toggle() error {
	if e.state == StateDestroyed {
		e.logger.Warn("theme engine has been destroyed")
		return ErrDestroyed
	}
	if e.cfg.Forced() {
		e.logger.Warn("theme cannot be toggled while forced theme is active", "forced", e.cfg.ForcedTheme)
		return ErrForced
	}
	themes := e.cfg.Themes()
	next := 0
	for i, t := range themes {
		if t == e.preference.Get() {
			next = (i + 1) % len(themes)
			break
		}
	}
	e.preference.Set(themes[next])
	return nil
}

// Destroy detaches the watcher and stops all further effects. It is
// idempotent and may be called from inside a change callback.
func (e *Engine) Destroy() {
	if e.state == StateDestroyed {
		return
	}
	e.state = StateDestroyed
	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
	e.watcher.Detach()
	for _, cancel := range e.effects {
		cancel()
	}
	e.effects = nil
}

func containsTheme(themes []Theme, t Theme) bool {
	for _, x := range themes {
		if x == t {
			return true
		}
	}
	return false
}

func joinThemes(themes []Theme) string {
	parts := make([]string, len(themes))
	for i, t := range themes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

package media

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/shade/internal/browser"
)

// DefaultPollInterval is used when a polled query is given no interval.
const DefaultPollInterval = 5 * time.Second

// ProbeFunc reads the dark-mode signal once.
type ProbeFunc func(ctx context.Context) (bool, error)

// PollQuery samples a probe on an interval while it has subscribers.
type PollQuery struct {
	probe    ProbeFunc
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	last  bool
	known bool
	stop  context.CancelFunc

	listeners listeners[bool]
}

// NewPollQuery wraps probe. Probe failures are logged and the last known
// value is kept.
func NewPollQuery(probe ProbeFunc, interval time.Duration, logger *slog.Logger) *PollQuery {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PollQuery{probe: probe, interval: interval, timeout: interval, logger: logger}
}

// NewTerminalQuery reports whether the controlling terminal has a dark
// background.
func NewTerminalQuery(interval time.Duration, logger *slog.Logger) *PollQuery {
	return NewPollQuery(func(context.Context) (bool, error) {
		return lipgloss.HasDarkBackground(), nil
	}, interval, logger)
}

// DarkModeExpr is the expression BrowserQuery evaluates in the page.
const DarkModeExpr = `window.matchMedia('(prefers-color-scheme: dark)').matches`

// NewBrowserQuery evaluates the page's prefers-color-scheme media query.
func NewBrowserQuery(ev browser.Evaluator, interval time.Duration, logger *slog.Logger) *PollQuery {
	return NewPollQuery(func(ctx context.Context) (bool, error) {
		var dark bool
		err := ev.Eval(ctx, DarkModeExpr, &dark)
		return dark, err
	}, interval, logger)
}

func (q *PollQuery) Matches() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	dark, err := q.probe(ctx)
	if err != nil {
		return false, err
	}
	q.mu.Lock()
	q.last, q.known = dark, true
	q.mu.Unlock()
	return dark, nil
}

func (q *PollQuery) Subscribe(fn func(bool)) (func(), error) {
	cancel := q.listeners.add(fn)

	q.mu.Lock()
	if q.stop == nil {
		ctx, stop := context.WithCancel(context.Background())
		q.stop = stop
		go q.run(ctx)
	}
	q.mu.Unlock()

	return func() {
		cancel()
		if q.listeners.len() == 0 {
			q.Close()
		}
	}, nil
}

// Close stops polling without waiting for an in-flight probe, so it may be
// called from a subscriber. Subscribing again restarts it.
func (q *PollQuery) Close() {
	q.mu.Lock()
	stop := q.stop
	q.stop = nil
	q.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (q *PollQuery) run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.poll(ctx)
		}
	}
}

func (q *PollQuery) poll(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, q.timeout)
	dark, err := q.probe(pctx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			q.logger.Debug("system theme probe failed", "error", err)
		}
		return
	}

	q.mu.Lock()
	changed := q.known && q.last != dark
	q.last, q.known = dark, true
	q.mu.Unlock()

	if changed && ctx.Err() == nil {
		q.listeners.notify(dark)
	}
}

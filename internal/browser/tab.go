// Package browser drives a single Chrome tab over the DevTools protocol.
// The dom and media packages use it to mark a real document and read its
// prefers-color-scheme signal.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Evaluator runs a JavaScript expression and decodes its result into res.
type Evaluator interface {
	Eval(ctx context.Context, expr string, res any) error
}

// Config holds configuration for the chromedp tab.
type Config struct {
	// RemoteURL is the CDP WebSocket endpoint of a running Chrome.
	// If empty, a local Chrome instance is launched.
	RemoteURL string
	Headless  bool
	// Timeout bounds browser start-up and each evaluation.
	Timeout time.Duration
}

// Tab is one open browser tab.
type Tab struct {
	mu            sync.Mutex
	ctx           context.Context
	cancel        context.CancelFunc
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	timeout       time.Duration
	logger        *slog.Logger
	closed        bool
}

// Open starts (or connects to) Chrome and navigates a new tab to url.
func Open(cfg Config, url string, logger *slog.Logger) (*Tab, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tab{timeout: cfg.Timeout, logger: logger}

	var allocCtx context.Context
	if cfg.RemoteURL != "" {
		allocCtx, t.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		logger.Info("chromedp connecting to remote browser", "url", cfg.RemoteURL)
	} else {
		opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
		copy(opts, chromedp.DefaultExecAllocatorOptions[:])
		opts = append(opts,
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, t.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		logger.Info("chromedp launching local browser", "headless", cfg.Headless)
	}

	var browserCtx context.Context
	browserCtx, t.browserCancel = chromedp.NewContext(allocCtx)
	t.ctx, t.cancel = chromedp.NewContext(browserCtx)

	// The first Run binds the CDP session to t.ctx, so it must not be a
	// derived timeout context.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(t.ctx, chromedp.Navigate(url)) }()
	select {
	case err := <-started:
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("open %s: %w", url, err)
		}
	case <-time.After(cfg.Timeout):
		t.Close()
		return nil, fmt.Errorf("open %s: timed out after %v", url, cfg.Timeout)
	}

	logger.Info("chromedp tab ready", "url", url)
	return t, nil
}

// Eval implements Evaluator against the tab's document.
func (t *Tab) Eval(ctx context.Context, expr string, res any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("browser tab is closed")
	}

	tctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(tctx, chromedp.Evaluate(expr, res))
}

// Close shuts the tab and the browser it was launched with.
func (t *Tab) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	if t.browserCancel != nil {
		t.browserCancel()
	}
	if t.allocCancel != nil {
		t.allocCancel()
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/mattjoyce/shade/internal/api"
	"github.com/mattjoyce/shade/internal/auth"
	"github.com/mattjoyce/shade/internal/browser"
	"github.com/mattjoyce/shade/internal/client"
	"github.com/mattjoyce/shade/internal/config"
	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/lock"
	"github.com/mattjoyce/shade/internal/log"
	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/storage"
	"github.com/mattjoyce/shade/internal/tui/watch"
)

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	ephemeral := fs.Bool("ephemeral", false, "Keep preferences in memory only")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, resolvedPath, err := config.LoadOrDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	switch {
	case resolvedPath == "":
		fmt.Fprintln(os.Stderr, "No config found, using built-in defaults")
	case *configPath == "":
		fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", resolvedPath)
	}
	if *ephemeral {
		cfg.State.Ephemeral = true
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("shade starting", "version", version, "config", resolvedPath)

	themeCfg, diagnostics := cfg.ThemeConfig()
	for _, d := range diagnostics {
		logger.Warn("theme option corrected", "field", d.Field, "diagnostic", d.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.State.Ephemeral {
		logger.Info("preferences are ephemeral")
	} else {
		pidLockPath := lock.PathFor(cfg.State.Path)
		pidLock, err := lock.AcquirePIDLock(pidLockPath)
		if err != nil {
			logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
			return 1
		}
		defer pidLock.Release()
		logger.Info("acquired PID lock", "path", pidLockPath)

		db, err = storage.OpenSQLite(ctx, cfg.State.Path)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.State.Path, "error", err)
			return 1
		}
		defer db.Close()
		logger.Info("database opened", "path", cfg.State.Path)
	}

	src, err := openSystemSource(cfg.System, log.WithComponent("system"))
	if err != nil {
		logger.Error("failed to open system source", "source", cfg.System.Source, "error", err)
		return 1
	}
	defer src.Close()
	logger.Info("system source ready", "source", cfg.System.Source)

	hub := events.NewHub(256)
	registry := session.NewRegistry(session.Options{
		Theme:     themeCfg,
		DB:        db,
		Query:     src.query,
		IdleTTL:   cfg.Sessions.IdleTTL,
		Retention: cfg.State.Retention,
		Hub:       hub,
		Logger:    log.WithComponent("session"),
	})

	tokens := make([]auth.TokenConfig, 0, len(cfg.API.Auth.Tokens))
	for _, t := range cfg.API.Auth.Tokens {
		tokens = append(tokens, auth.TokenConfig{
			Token:  t.Token,
			Scopes: t.Scopes,
		})
	}
	apiServer := api.New(api.Config{
		Listen:       cfg.API.Listen,
		APIKey:       cfg.API.Auth.APIKey,
		Tokens:       tokens,
		CookieName:   cfg.Sessions.CookieName,
		SystemSource: cfg.System.Source,
		Diagnostics:  diagnostics,
	}, registry, log.WithComponent("api"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return registry.Run(gctx)
	})
	g.Go(func() error {
		if err := apiServer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("api: %w", err)
		}
		return nil
	})
	if src.mirror != nil {
		g.Go(func() error {
			return src.mirror.Mirror(gctx, hub, themeCfg)
		})
		logger.Info("mirroring resolved themes into browser tab", "url", cfg.System.Browser.URL)
	}

	logger.Info("shade running (press Ctrl+C to stop)", "listen", cfg.API.Listen)

	if err := g.Wait(); err != nil {
		logger.Error("component failed", "error", err)
		return 1
	}

	logger.Info("shade stopped")
	return 0
}

// systemSource is the process-wide system signal chosen by system.source.
// A nil query means each session takes the signal from its own client.
type systemSource struct {
	query   media.Query
	mirror  *dom.Applier
	closers []func()
}

func (s *systemSource) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openSystemSource(sys config.SystemConfig, logger *slog.Logger) (*systemSource, error) {
	src := &systemSource{}
	switch sys.Source {
	case config.SourceHint, "":
	case config.SourceNone:
		src.query = media.NewHintQuery(false)
	case config.SourceTerminal:
		q := media.NewTerminalQuery(sys.PollInterval, logger)
		src.query = q
		src.closers = append(src.closers, q.Close)
	case config.SourceFile:
		q := media.NewFileQuery(sys.File, logger)
		src.query = q
		src.closers = append(src.closers, q.Close)
	case config.SourceBrowser:
		tab, err := browser.Open(browser.Config{
			RemoteURL: sys.Browser.RemoteURL,
			Headless:  sys.Browser.Headless,
			Timeout:   sys.Browser.Timeout,
		}, sys.Browser.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("open browser: %w", err)
		}
		src.closers = append(src.closers, tab.Close)
		q := media.NewBrowserQuery(tab, sys.PollInterval, logger)
		src.query = q
		src.closers = append(src.closers, q.Close)
		if sys.Browser.Mirror {
			src.mirror = dom.NewApplier(dom.NewBrowserElement(tab), logger)
		}
	default:
		return nil, fmt.Errorf("unknown system source %q", sys.Source)
	}
	return src, nil
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	apiURL := fs.String("api-url", "http://localhost:8080", "Service API URL")
	apiKey := fs.String("api-key", os.Getenv("SHADE_API_KEY"), "API Bearer Token")
	sessionID := fs.String("session", os.Getenv("SHADE_SESSION"), "Session to bind")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	// Queried before the program owns the terminal.
	dark := lipgloss.HasDarkBackground()

	m := watch.New(client.New(*apiURL, *apiKey, *sessionID), watch.Options{TerminalDark: &dark})
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

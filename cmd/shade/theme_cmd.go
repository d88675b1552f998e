package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattjoyce/shade/internal/api"
	"github.com/mattjoyce/shade/internal/client"
	"github.com/mattjoyce/shade/internal/config"
	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/log"
	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/storage"
	"github.com/mattjoyce/shade/internal/theme"
)

const themeRequestTimeout = 10 * time.Second

// remoteFlags are shared by the theme actions that call a running service.
type remoteFlags struct {
	apiURL  string
	apiKey  string
	session string
	jsonOut bool
}

func newRemoteFlagSet(name string) (*flag.FlagSet, *remoteFlags) {
	rf := &remoteFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&rf.apiURL, "api-url", "http://localhost:8080", "Service API URL")
	fs.StringVar(&rf.apiKey, "api-key", os.Getenv("SHADE_API_KEY"), "API Bearer Token")
	fs.StringVar(&rf.session, "session", os.Getenv("SHADE_SESSION"), "Session to act on")
	fs.BoolVar(&rf.jsonOut, "json", false, "Output in structured JSON format")
	return fs, rf
}

// splitPositional lets the action's argument come before or after flags.
func splitPositional(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func runThemeGet(args []string) int {
	fs, rf := newRemoteFlagSet("get")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: shade theme get [--api-url URL] [--api-key KEY] [--session ID] [--json]")
		return 1
	}
	return callTheme(rf, func(ctx context.Context, c *client.Client) (session.State, error) {
		return c.State(ctx)
	})
}

func runThemeSet(args []string) int {
	value, rest := splitPositional(args)
	fs, rf := newRemoteFlagSet("set")
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if value == "" && fs.NArg() == 1 {
		value = fs.Arg(0)
	}
	if value == "" {
		fmt.Fprintln(os.Stderr, "Usage: shade theme set <light|dark|system> [flags]")
		return 1
	}
	t, err := theme.ParseTheme(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return callTheme(rf, func(ctx context.Context, c *client.Client) (session.State, error) {
		return c.SetTheme(ctx, string(t))
	})
}

func runThemeToggle(args []string) int {
	fs, rf := newRemoteFlagSet("toggle")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	return callTheme(rf, func(ctx context.Context, c *client.Client) (session.State, error) {
		return c.Toggle(ctx)
	})
}

func runThemeSystem(args []string) int {
	value, rest := splitPositional(args)
	fs, rf := newRemoteFlagSet("system")
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if value == "" && fs.NArg() == 1 {
		value = fs.Arg(0)
	}
	r, err := theme.ParseResolved(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: shade theme system <light|dark> [flags]")
		return 1
	}
	return callTheme(rf, func(ctx context.Context, c *client.Client) (session.State, error) {
		return c.SetSystem(ctx, r == theme.ResolvedDark)
	})
}

func callTheme(rf *remoteFlags, call func(context.Context, *client.Client) (session.State, error)) int {
	ctx, cancel := context.WithTimeout(context.Background(), themeRequestTimeout)
	defer cancel()

	c := client.New(rf.apiURL, rf.apiKey, rf.session)
	st, err := call(ctx, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if rf.jsonOut {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	printState(os.Stdout, st)
	return 0
}

func printState(w io.Writer, st session.State) {
	fmt.Fprintf(w, "session:    %s\n", st.Session)
	fmt.Fprintf(w, "preference: %s\n", st.Preference)
	fmt.Fprintf(w, "system:     %s\n", st.System)
	fmt.Fprintf(w, "resolved:   %s\n", st.Resolved)
	if st.Forced != "" {
		fmt.Fprintf(w, "forced:     %s\n", st.Forced)
	}
}

// runThemeRender prints the markup a first request receives: default
// preference, light system signal and the root marks for the configured
// strategy.
func runThemeRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	outPath := fs.String("out", "", "Write to FILE instead of stdout")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, _, err := config.LoadOrDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log.SetupWriter(cfg.Service.LogLevel, os.Stderr)
	logger := log.WithComponent("render")

	themeCfg, diagnostics := cfg.ThemeConfig()
	for _, d := range diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	root := dom.NewNode()
	engine := theme.NewEngine(
		themeCfg,
		storage.NewManager(storage.NewMemoryKV(), logger),
		media.NewWatcher(nil, logger),
		dom.NewApplier(root, logger),
		theme.WithLogger(logger),
	)
	engine.Initialize(theme.ServerRender)
	defer engine.Destroy()

	st := session.State{
		Preference:  engine.Preference(),
		System:      engine.SystemPreference(),
		Resolved:    engine.ResolvedTheme(),
		Forced:      themeCfg.ForcedTheme,
		Initialized: engine.Initialized(),
		Themes:      themeCfg.Themes(),
		Root:        root.Snapshot(),
	}

	var w io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outPath, err)
			return 1
		}
		defer f.Close()
		w = f
	}

	if err := api.RenderPage(w, st, root); err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		return 1
	}
	if *outPath == "" {
		fmt.Println()
	}
	return 0
}

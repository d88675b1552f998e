// Package doctor validates shade configuration.
package doctor

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/mattjoyce/shade/internal/auth"
	"github.com/mattjoyce/shade/internal/config"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration.
type Doctor struct {
	cfg *config.Config
}

// New creates a Doctor from a loaded config.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateServiceConfig(r)
	d.validateAPIConfig(r)
	d.validateTokenScopes(r)
	d.warnThemeCorrections(r)
	d.validateSystemSource(r)
	d.warnSessions(r)
	d.warnDeprecatedSyntax(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateServiceConfig checks required service fields.
func (d *Doctor) validateServiceConfig(r *Result) {
	if d.cfg.State.Path == "" && !d.cfg.State.Ephemeral {
		d.addError(r, "service", "state.path", "state.path is required")
	}
	if d.cfg.State.Ephemeral {
		d.addWarning(r, "service", "state.ephemeral", "preferences are kept in memory and lost on restart")
	}
}

// validateAPIConfig checks API server settings.
func (d *Doctor) validateAPIConfig(r *Result) {
	if d.cfg.API.Listen == "" {
		d.addError(r, "api", "api.listen", "api.listen is required")
		return
	}
	host, _, err := net.SplitHostPort(d.cfg.API.Listen)
	if err != nil {
		d.addError(r, "api", "api.listen", fmt.Sprintf("invalid listen address %q: %v", d.cfg.API.Listen, err))
		return
	}
	if d.cfg.API.Auth.APIKey == "" && len(d.cfg.API.Auth.Tokens) == 0 && !isLoopback(host) {
		d.addWarning(r, "api", "api.auth", "API listens beyond localhost but no authentication configured")
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// validateTokenScopes checks every token names known scopes.
func (d *Doctor) validateTokenScopes(r *Result) {
	seen := map[string]int{}
	for i, tok := range d.cfg.API.Auth.Tokens {
		field := fmt.Sprintf("api.auth.tokens[%d]", i)
		if tok.Token == "" {
			d.addWarning(r, "env_vars", field+".token",
				"token value is empty (possibly unresolved environment variable)")
		} else if j, dup := seen[tok.Token]; dup {
			d.addError(r, "tokens", field+".token", fmt.Sprintf("token duplicates api.auth.tokens[%d]", j))
		} else {
			seen[tok.Token] = i
		}
		for _, s := range tok.Scopes {
			if !auth.ValidScope(s) {
				d.addError(r, "tokens", field+".scopes", fmt.Sprintf("unknown scope %q", s))
			}
		}
	}
}

// warnThemeCorrections reports every value the theme resolver replaced.
func (d *Doctor) warnThemeCorrections(r *Result) {
	tc, diags := d.cfg.ThemeConfig()
	for _, diag := range diags {
		d.addWarning(r, "theme", "theme."+diag.Field, diag.String())
	}
	if tc.Forced() {
		d.addWarning(r, "theme", "theme.forced_theme",
			fmt.Sprintf("theme is forced to %q; users cannot change it", tc.ForcedTheme))
	}
	if !tc.EnableSystem && tc.DefaultTheme == "system" {
		d.addWarning(r, "theme", "theme.default_theme",
			"default_theme is system but enable_system is false; it resolves to light")
	}
}

// validateSystemSource checks the configured dark-mode signal source.
func (d *Doctor) validateSystemSource(r *Result) {
	sys := d.cfg.System
	switch sys.Source {
	case config.SourceFile:
		if sys.File == "" {
			d.addError(r, "system", "system.file", "system.file is required for the file source")
		} else if _, err := os.Stat(sys.File); err != nil {
			d.addWarning(r, "system", "system.file",
				fmt.Sprintf("%s does not exist yet; light is reported until it does", sys.File))
		}
	case config.SourceBrowser:
		if sys.Browser.URL == "" {
			d.addError(r, "system", "system.browser.url", "system.browser.url is required for the browser source")
		}
	case config.SourceHint, config.SourceTerminal, config.SourceNone:
	default:
		d.addError(r, "system", "system.source", fmt.Sprintf("unknown source %q", sys.Source))
	}

	polled := sys.Source == config.SourceTerminal || sys.Source == config.SourceBrowser
	if polled && sys.PollInterval > 0 && sys.PollInterval < time.Second {
		d.addWarning(r, "system", "system.poll_interval",
			fmt.Sprintf("poll interval %v is very short (< 1s)", sys.PollInterval))
	}
	if sys.Source == config.SourceNone {
		tc, _ := d.cfg.ThemeConfig()
		if tc.EnableSystem {
			d.addWarning(r, "system", "system.source", "no system source configured; system preference always resolves to light")
		}
	}
}

// warnSessions flags session settings that keep engines alive forever.
func (d *Doctor) warnSessions(r *Result) {
	if d.cfg.Sessions.IdleTTL == 0 {
		d.addWarning(r, "sessions", "sessions.idle_ttl", "idle sessions are never pruned")
	}
}

// warnDeprecatedSyntax warns about legacy config patterns.
func (d *Doctor) warnDeprecatedSyntax(r *Result) {
	if d.cfg.API.Auth.APIKey != "" && len(d.cfg.API.Auth.Tokens) > 0 {
		d.addWarning(r, "deprecated", "api.auth",
			"both api_key and tokens configured; prefer tokens array only")
	}
	if d.cfg.API.Auth.APIKey != "" && len(d.cfg.API.Auth.Tokens) == 0 {
		d.addWarning(r, "deprecated", "api.auth.api_key",
			"legacy api_key grants full access; migrate to tokens array with scopes")
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package config

import (
	"time"

	"github.com/mattjoyce/shade/internal/theme"
)

// Config represents the complete shade configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	State    StateConfig    `yaml:"state"`
	API      APIConfig      `yaml:"api,omitempty"`
	Theme    theme.Options  `yaml:"theme,omitempty"`
	System   SystemConfig   `yaml:"system,omitempty"`
	Sessions SessionsConfig `yaml:"sessions,omitempty"`
	Include  []string       `yaml:"include,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// StateConfig defines preference storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
	// Ephemeral keeps preferences in memory only.
	Ephemeral bool `yaml:"ephemeral,omitempty"`
	// Retention purges preferences not written for this long. Zero keeps them.
	Retention time.Duration `yaml:"retention,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Listen string        `yaml:"listen"`
	Auth   APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings. With neither an
// api_key nor tokens the API is open.
type APIAuthConfig struct {
	// APIKey is the single admin bearer token. Prefer Tokens for scoped access.
	APIKey string     `yaml:"api_key"`
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken defines a bearer token and its scopes.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// System signal sources.
const (
	SourceHint     = "hint"
	SourceTerminal = "terminal"
	SourceFile     = "file"
	SourceBrowser  = "browser"
	SourceNone     = "none"
)

// SystemConfig selects where the operating system's dark-mode signal comes
// from.
type SystemConfig struct {
	Source       string        `yaml:"source"`
	File         string        `yaml:"file,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	Browser      BrowserConfig `yaml:"browser,omitempty"`
}

// BrowserConfig defines the chromedp tab used by the browser source.
type BrowserConfig struct {
	URL       string        `yaml:"url"`
	RemoteURL string        `yaml:"remote_url,omitempty"`
	Headless  bool          `yaml:"headless"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	// Mirror applies each resolved theme onto the tab's document as well.
	Mirror bool `yaml:"mirror,omitempty"`
}

// SessionsConfig defines browser session handling.
type SessionsConfig struct {
	IdleTTL    time.Duration `yaml:"idle_ttl"`
	CookieName string        `yaml:"cookie_name"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "shade",
			LogLevel: "info",
		},
		State: StateConfig{
			Path:      "./data/shade.db",
			Retention: 90 * 24 * time.Hour,
		},
		API: APIConfig{
			Listen: "127.0.0.1:8080",
		},
		System: SystemConfig{
			Source:       SourceHint,
			PollInterval: 5 * time.Second,
			Browser: BrowserConfig{
				Headless: true,
				Timeout:  30 * time.Second,
			},
		},
		Sessions: SessionsConfig{
			IdleTTL:    30 * time.Minute,
			CookieName: "shade_session",
		},
	}
}

// ThemeConfig resolves the theme section. Corrections are returned as
// diagnostics rather than failing the load.
func (c *Config) ThemeConfig() (theme.Config, []theme.Diagnostic) {
	return theme.Resolve(c.Theme)
}

// ChecksumManifest is the .checksums file written by "config lock".
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

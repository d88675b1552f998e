package theme

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultStorageKey is the key the preference is persisted under.
const DefaultStorageKey = "theme"

// Options is a partial configuration. Empty strings and nil toggles mean
// "not set" and take the documented default.
type Options struct {
	DefaultTheme      string `yaml:"default_theme,omitempty" json:"default_theme,omitempty"`
	StorageKey        string `yaml:"storage_key,omitempty" json:"storage_key,omitempty"`
	Strategy          string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	EnableAutoInit    *bool  `yaml:"enable_auto_init,omitempty" json:"enable_auto_init,omitempty"`
	EnableColorScheme *bool  `yaml:"enable_color_scheme,omitempty" json:"enable_color_scheme,omitempty"`
	EnableSystem      *bool  `yaml:"enable_system,omitempty" json:"enable_system,omitempty"`
	ForcedTheme       string `yaml:"forced_theme,omitempty" json:"forced_theme,omitempty"`
}

// Config is a fully populated, validated configuration. It is never
// mutated after construction.
type Config struct {
	DefaultTheme      Theme    `json:"default_theme"`
	StorageKey        string   `json:"storage_key"`
	Strategy          Strategy `json:"strategy"`
	EnableAutoInit    bool     `json:"enable_auto_init"`
	EnableColorScheme bool     `json:"enable_color_scheme"`
	EnableSystem      bool     `json:"enable_system"`
	// ForcedTheme is empty when no override is active.
	ForcedTheme Theme `json:"forced_theme,omitempty"`
}

// Forced reports whether an administrator override disables user choice.
func (c Config) Forced() bool {
	return c.ForcedTheme != ""
}

// Themes lists the preferences a user may select, in toggle order.
func (c Config) Themes() []Theme {
	if c.EnableSystem {
		return []Theme{Light, Dark, System}
	}
	return []Theme{Light, Dark}
}

// Options converts c back into a partial configuration with every field set.
func (c Config) Options() Options {
	autoInit, colorScheme, system := c.EnableAutoInit, c.EnableColorScheme, c.EnableSystem
	return Options{
		DefaultTheme:      string(c.DefaultTheme),
		StorageKey:        c.StorageKey,
		Strategy:          string(c.Strategy),
		EnableAutoInit:    &autoInit,
		EnableColorScheme: &colorScheme,
		EnableSystem:      &system,
		ForcedTheme:       string(c.ForcedTheme),
	}
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		DefaultTheme:      System,
		StorageKey:        DefaultStorageKey,
		Strategy:          StrategyAttribute,
		EnableAutoInit:    true,
		EnableColorScheme: true,
		EnableSystem:      true,
	}
}

// Diagnostic records one option that was corrected during resolution.
type Diagnostic struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	Fallback string `json:"fallback"`
}

func (d Diagnostic) String() string {
	if d.Fallback == "" {
		return fmt.Sprintf("invalid %s %q, ignoring it", d.Field, d.Value)
	}
	return fmt.Sprintf("invalid %s %q, using %q as fallback", d.Field, d.Value, d.Fallback)
}

// Resolve merges opts over the defaults. Invalid values are replaced by the
// field's default and reported; resolution itself never fails.
func Resolve(opts Options) (Config, []Diagnostic) {
	cfg := DefaultConfig()
	var diags []Diagnostic

	if opts.DefaultTheme != "" {
		if t := Theme(opts.DefaultTheme); t.Valid() {
			cfg.DefaultTheme = t
		} else {
			diags = append(diags, Diagnostic{Field: "default_theme", Value: opts.DefaultTheme, Fallback: string(System)})
		}
	}

	if opts.StorageKey != "" {
		if key := strings.TrimSpace(opts.StorageKey); key != "" {
			cfg.StorageKey = key
		} else {
			diags = append(diags, Diagnostic{Field: "storage_key", Value: opts.StorageKey, Fallback: DefaultStorageKey})
		}
	}

	if opts.Strategy != "" {
		if s := Strategy(opts.Strategy); s.Valid() {
			cfg.Strategy = s
		} else {
			diags = append(diags, Diagnostic{Field: "strategy", Value: opts.Strategy, Fallback: string(StrategyAttribute)})
		}
	}

	if opts.EnableAutoInit != nil {
		cfg.EnableAutoInit = *opts.EnableAutoInit
	}
	if opts.EnableColorScheme != nil {
		cfg.EnableColorScheme = *opts.EnableColorScheme
	}
	if opts.EnableSystem != nil {
		cfg.EnableSystem = *opts.EnableSystem
	}

	// Only light and dark can be forced; "system" is dropped like any other
	// invalid value.
	if opts.ForcedTheme != "" {
		if t := Theme(opts.ForcedTheme); t == Light || t == Dark {
			cfg.ForcedTheme = t
		} else {
			diags = append(diags, Diagnostic{Field: "forced_theme", Value: opts.ForcedTheme})
		}
	}

	return cfg, diags
}

// NewConfig resolves opts and logs every correction as a warning.
func NewConfig(opts Options, logger *slog.Logger) Config {
	cfg, diags := Resolve(opts)
	if logger != nil {
		for _, d := range diags {
			logger.Warn("theme option corrected", "field", d.Field, "value", d.Value, "fallback", d.Fallback)
		}
	}
	return cfg
}

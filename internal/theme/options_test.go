package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveDefaults(t *testing.T) {
	cfg, diags := Resolve(Options{})
	assert.Empty(t, diags)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, System, cfg.DefaultTheme)
	assert.Equal(t, "theme", cfg.StorageKey)
	assert.Equal(t, StrategyAttribute, cfg.Strategy)
	assert.True(t, cfg.EnableAutoInit)
	assert.True(t, cfg.EnableColorScheme)
	assert.True(t, cfg.EnableSystem)
	assert.False(t, cfg.Forced())
}

func TestResolveOverrides(t *testing.T) {
	cfg, diags := Resolve(Options{
		DefaultTheme:      "dark",
		StorageKey:        "app-theme",
		Strategy:          "class",
		EnableAutoInit:    boolPtr(false),
		EnableColorScheme: boolPtr(false),
		EnableSystem:      boolPtr(false),
		ForcedTheme:       "light",
	})
	assert.Empty(t, diags)
	assert.Equal(t, Config{
		DefaultTheme:      Dark,
		StorageKey:        "app-theme",
		Strategy:          StrategyClass,
		EnableAutoInit:    false,
		EnableColorScheme: false,
		EnableSystem:      false,
		ForcedTheme:       Light,
	}, cfg)
}

func TestResolveCorrectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		check func(t *testing.T, cfg Config)
		field string
	}{
		{
			name:  "default theme",
			opts:  Options{DefaultTheme: "purple"},
			check: func(t *testing.T, cfg Config) { assert.Equal(t, System, cfg.DefaultTheme) },
			field: "default_theme",
		},
		{
			name:  "strategy",
			opts:  Options{Strategy: "css-var"},
			check: func(t *testing.T, cfg Config) { assert.Equal(t, StrategyAttribute, cfg.Strategy) },
			field: "strategy",
		},
		{
			name:  "blank storage key",
			opts:  Options{StorageKey: "   "},
			check: func(t *testing.T, cfg Config) { assert.Equal(t, "theme", cfg.StorageKey) },
			field: "storage_key",
		},
		{
			name:  "forced theme",
			opts:  Options{ForcedTheme: "sepia"},
			check: func(t *testing.T, cfg Config) { assert.False(t, cfg.Forced()) },
			field: "forced_theme",
		},
		{
			name:  "forced system",
			opts:  Options{ForcedTheme: "system"},
			check: func(t *testing.T, cfg Config) { assert.Equal(t, Theme(""), cfg.ForcedTheme) },
			field: "forced_theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, diags := Resolve(tt.opts)
			tt.check(t, cfg)
			if assert.Len(t, diags, 1) {
				assert.Equal(t, tt.field, diags[0].Field)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	inputs := []Options{
		{},
		{DefaultTheme: "dark", Strategy: "class"},
		{DefaultTheme: "nope", Strategy: "nope", ForcedTheme: "nope", StorageKey: " "},
		{ForcedTheme: "dark", EnableSystem: boolPtr(false)},
	}
	for _, in := range inputs {
		first, _ := Resolve(in)
		second, diags := Resolve(first.Options())
		assert.Empty(t, diags)
		assert.Equal(t, first, second)
		assert.True(t, first.DefaultTheme.Valid())
		assert.True(t, first.Strategy.Valid())
		assert.NotEmpty(t, first.StorageKey)
	}
}

func TestConfigThemes(t *testing.T) {
	assert.Equal(t, []Theme{Light, Dark, System}, DefaultConfig().Themes())
	cfg, _ := Resolve(Options{EnableSystem: boolPtr(false)})
	assert.Equal(t, []Theme{Light, Dark}, cfg.Themes())
}

func TestResolveIsPure(t *testing.T) {
	forcedDark, _ := Resolve(Options{ForcedTheme: "dark"})
	noSystem, _ := Resolve(Options{EnableSystem: boolPtr(false)})
	def := DefaultConfig()

	for _, pref := range []Theme{Light, Dark, System} {
		for _, sys := range []Resolved{ResolvedLight, ResolvedDark} {
			assert.Equal(t, ResolvedDark, resolve(forcedDark, pref, sys), "forced dark, pref=%s sys=%s", pref, sys)
		}
	}

	assert.Equal(t, ResolvedDark, resolve(def, System, ResolvedDark))
	assert.Equal(t, ResolvedLight, resolve(def, System, ResolvedLight))
	assert.Equal(t, ResolvedLight, resolve(noSystem, System, ResolvedDark))
	assert.Equal(t, ResolvedDark, resolve(def, Dark, ResolvedLight))
	assert.Equal(t, ResolvedLight, resolve(def, Light, ResolvedDark))
}

func TestParseTheme(t *testing.T) {
	for _, s := range []string{"light", "dark", "system"} {
		got, err := ParseTheme(s)
		assert.NoError(t, err)
		assert.Equal(t, Theme(s), got)
	}
	_, err := ParseTheme("purple")
	assert.Error(t, err)

	_, err = ParseResolved("system")
	assert.Error(t, err)
}

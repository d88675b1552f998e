package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/shade/internal/theme"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config",
			yaml: `
state:
  path: ./test.db
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "./test.db" {
					t.Error("state.path not parsed")
				}
				if cfg.Service.Name != "shade" {
					t.Errorf("service.name default not applied, got %q", cfg.Service.Name)
				}
				if cfg.System.Source != SourceHint {
					t.Errorf("system.source default = %q, want hint", cfg.System.Source)
				}
				if cfg.Sessions.IdleTTL != 30*time.Minute {
					t.Errorf("sessions.idle_ttl default = %v", cfg.Sessions.IdleTTL)
				}
				if cfg.Sessions.CookieName != "shade_session" {
					t.Errorf("sessions.cookie_name default = %q", cfg.Sessions.CookieName)
				}
			},
		},
		{
			name: "theme section",
			yaml: `
theme:
  default_theme: dark
  strategy: class
  storage_key: app-theme
  enable_system: false
  forced_theme: light
`,
			checkFn: func(t *testing.T, cfg *Config) {
				tc, diags := cfg.ThemeConfig()
				if len(diags) != 0 {
					t.Fatalf("unexpected diagnostics: %v", diags)
				}
				if tc.DefaultTheme != theme.Dark || tc.Strategy != theme.StrategyClass {
					t.Errorf("theme options not parsed: %+v", tc)
				}
				if tc.StorageKey != "app-theme" || tc.EnableSystem || tc.ForcedTheme != theme.Light {
					t.Errorf("theme options not parsed: %+v", tc)
				}
				if !tc.EnableAutoInit || !tc.EnableColorScheme {
					t.Error("unset toggles must keep their defaults")
				}
			},
		},
		{
			name: "invalid theme values load with diagnostics",
			yaml: `
theme:
  default_theme: purple
  forced_theme: system
`,
			checkFn: func(t *testing.T, cfg *Config) {
				tc, diags := cfg.ThemeConfig()
				if len(diags) != 2 {
					t.Fatalf("len(diags) = %d, want 2", len(diags))
				}
				if tc.DefaultTheme != theme.System || tc.Forced() {
					t.Errorf("invalid values not corrected: %+v", tc)
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
state:
  path: ${SHADE_TEST_DB}
api:
  auth:
    api_key: ${SHADE_TEST_KEY}
`,
			env: map[string]string{
				"SHADE_TEST_DB":  "/tmp/shade.db",
				"SHADE_TEST_KEY": "secret123",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "/tmp/shade.db" {
					t.Errorf("state.path = %q", cfg.State.Path)
				}
				if cfg.API.Auth.APIKey != "secret123" {
					t.Errorf("api_key = %q", cfg.API.Auth.APIKey)
				}
			},
		},
		{
			name: "unresolved env var",
			yaml: `
api:
  auth:
    api_key: ${SHADE_TEST_UNSET_KEY}
`,
			wantErr: "SHADE_TEST_UNSET_KEY",
		},
		{
			name: "file source requires path",
			yaml: `
system:
  source: file
`,
			wantErr: "system.file is required",
		},
		{
			name: "unknown source",
			yaml: `
system:
  source: carrier-pigeon
`,
			wantErr: "system.source must be one of",
		},
		{
			name: "token scopes are checked",
			yaml: `
api:
  auth:
    tokens:
      - token: abc
        scopes: [plugin:rw]
`,
			wantErr: "unknown scope",
		},
		{
			name:    "invalid yaml",
			yaml:    "service: [",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.yaml)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadDirectoryWithIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
include:
  - theme.yaml
service:
  log_level: debug
theme:
  default_theme: light
`)
	writeFile(t, filepath.Join(dir, "theme.yaml"), `
theme:
  default_theme: dark
  strategy: class
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.DefaultTheme != "dark" || cfg.Theme.Strategy != "class" {
		t.Errorf("include not merged: %+v", cfg.Theme)
	}
	if cfg.Service.LogLevel != "debug" {
		t.Errorf("root value lost: %q", cfg.Service.LogLevel)
	}

	files, err := DiscoverAllConfigFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverAllConfigFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "include: [a.yaml]\n")
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: [config.yaml]\n")

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "circular dependency") {
		t.Fatalf("expected circular dependency error, got %v", err)
	}
}

func TestLoadVerifiesChecksums(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "theme:\n  default_theme: dark\n")

	if _, err := GenerateChecksumsWithReport(dir, []string{"config.yaml"}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err != nil {
		t.Fatalf("Load() with matching checksums: %v", err)
	}

	writeFile(t, path, "theme:\n  default_theme: light\n")
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "hash mismatch") {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
}

func TestDiscoverConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHADE_CONFIG_DIR", dir)

	got, err := DiscoverConfigDir()
	if err != nil {
		t.Fatalf("DiscoverConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("DiscoverConfigDir() = %q, want %q", got, dir)
	}
}

func TestInterpolateEnv(t *testing.T) {
	t.Setenv("SHADE_TEST_VAR", "value")

	tests := []struct {
		in, want string
	}{
		{in: "${SHADE_TEST_VAR}", want: "value"},
		{in: "prefix-${SHADE_TEST_VAR}-suffix", want: "prefix-value-suffix"},
		{in: "${SHADE_TEST_MISSING}", want: "${SHADE_TEST_MISSING}"},
		{in: "$SHADE_TEST_VAR", want: "$SHADE_TEST_VAR"},
	}
	for _, tt := range tests {
		if got := interpolateEnv(tt.in); got != tt.want {
			t.Errorf("interpolateEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := applyConfigDefaults(Defaults())
	if err := validate(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	bad := applyConfigDefaults(Defaults())
	bad.Service.LogLevel = "loud"
	if err := validate(bad); err == nil {
		t.Error("expected log level error")
	}

	bad = applyConfigDefaults(Defaults())
	bad.Sessions.CookieName = "a;b"
	if err := validate(bad); err == nil {
		t.Error("expected cookie name error")
	}

	bad = applyConfigDefaults(Defaults())
	bad.System.Source = SourceBrowser
	if err := validate(bad); err == nil {
		t.Error("expected browser url error")
	}
}

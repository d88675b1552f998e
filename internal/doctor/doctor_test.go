package doctor

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/shade/internal/config"
	"github.com/mattjoyce/shade/internal/theme"
)

func validConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "test", LogLevel: "info"},
		State:   config.StateConfig{Path: "/tmp/test.db"},
		API:     config.APIConfig{Listen: "127.0.0.1:8080"},
		System:  config.SystemConfig{Source: config.SourceHint},
		Sessions: config.SessionsConfig{
			IdleTTL:    30 * time.Minute,
			CookieName: "shade_session",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	r := New(validConfig()).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got: %v", r.Warnings)
	}
}

func TestValidate_MissingStatePath(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.State.Path = ""
	r := New(cfg).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	assertHasError(t, r, "service", "state.path")
}

func TestValidate_ThemeCorrectionsAreWarnings(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Theme = theme.Options{DefaultTheme: "purple", Strategy: "inline", ForcedTheme: "system"}
	r := New(cfg).Validate()
	if !r.Valid {
		t.Fatalf("theme corrections must not invalidate config: %v", r.Errors)
	}
	assertHasWarning(t, r, "theme", `invalid default_theme "purple"`)
	assertHasWarning(t, r, "theme", `invalid strategy "inline"`)
	assertHasWarning(t, r, "theme", `invalid forced_theme "system"`)
}

func TestValidate_ForcedThemeWarning(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Theme = theme.Options{ForcedTheme: "dark"}
	r := New(cfg).Validate()
	assertHasWarning(t, r, "theme", "users cannot change it")
}

func TestValidate_SystemDisabledDefault(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	off := false
	cfg.Theme = theme.Options{EnableSystem: &off}
	r := New(cfg).Validate()
	assertHasWarning(t, r, "theme", "resolves to light")
}

func TestValidate_UnknownScope(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API.Auth.Tokens = []config.APIToken{{Token: "abc", Scopes: []string{"jobs:rw"}}}
	r := New(cfg).Validate()
	assertHasError(t, r, "tokens", "unknown scope")
}

func TestValidate_DuplicateToken(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API.Auth.Tokens = []config.APIToken{
		{Token: "abc", Scopes: []string{"theme:ro"}},
		{Token: "abc", Scopes: []string{"theme:rw"}},
	}
	r := New(cfg).Validate()
	assertHasError(t, r, "tokens", "duplicates")
}

func TestValidate_OpenAPIOnPublicAddress(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API.Listen = "0.0.0.0:8080"
	r := New(cfg).Validate()
	assertHasWarning(t, r, "api", "no authentication")
}

func TestValidate_FileSource(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.System.Source = config.SourceFile
	r := New(cfg).Validate()
	assertHasError(t, r, "system", "system.file is required")

	cfg.System.File = filepath.Join(t.TempDir(), "missing")
	r = New(cfg).Validate()
	assertHasWarning(t, r, "system", "does not exist yet")
}

func TestValidate_WarnDeprecatedAPIKey(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API.Auth.APIKey = "old-key"
	r := New(cfg).Validate()
	assertHasWarning(t, r, "deprecated", "api_key")
}

func TestValidate_WarnBothAPIKeyAndTokens(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API.Auth.APIKey = "old-key"
	cfg.API.Auth.Tokens = []config.APIToken{{Token: "new-key", Scopes: []string{"*"}}}
	r := New(cfg).Validate()
	assertHasWarning(t, r, "deprecated", "both")
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()
	r := &Result{
		Valid:  false,
		Errors: []Issue{{Category: "test", Message: "bad thing"}},
	}
	out, err := FormatJSON(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bad thing") {
		t.Fatalf("expected JSON to contain error message, got: %s", out)
	}
}

func TestFormatHuman_Valid(t *testing.T) {
	t.Parallel()
	out := FormatHuman(&Result{Valid: true})
	if !strings.Contains(out, "valid") {
		t.Fatalf("expected 'valid' in output, got: %s", out)
	}
}

func TestFormatHuman_Errors(t *testing.T) {
	t.Parallel()
	r := &Result{
		Valid:  false,
		Errors: []Issue{{Category: "test", Field: "x.y", Message: "broken"}},
	}
	out := FormatHuman(r)
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "broken") {
		t.Fatalf("expected error in output, got: %s", out)
	}
}

// --- helpers ---

func assertHasError(t *testing.T, r *Result, category, substring string) {
	t.Helper()
	for _, e := range r.Errors {
		if e.Category == category && (strings.Contains(e.Message, substring) || strings.Contains(e.Field, substring)) {
			return
		}
	}
	t.Fatalf("expected error with category=%q containing %q, got: %v", category, substring, r.Errors)
}

func assertHasWarning(t *testing.T, r *Result, category, substring string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Category == category && strings.Contains(w.Message, substring) {
			return
		}
	}
	t.Fatalf("expected warning with category=%q containing %q, got: %v", category, substring, r.Warnings)
}

package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

func TestPageRendersResolvedThemeOnRoot(t *testing.T) {
	srv, _ := newTestServer(t, Config{}, session.Options{})

	rr := do(t, srv.Handler(), http.MethodGet, "/", "", map[string]string{HintHeader: "dark"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`<!doctype html>`,
		`data-theme="dark"`,
		`style="color-scheme: dark"`,
		`data-resolved="dark"`,
		`aria-pressed="true"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q:\n%s", want, body)
		}
	}
}

func TestPageClassStrategy(t *testing.T) {
	cfg := theme.DefaultConfig()
	cfg.Strategy = theme.StrategyClass
	cfg.DefaultTheme = theme.Dark
	srv, _ := newTestServer(t, Config{}, session.Options{Theme: cfg})

	body := do(t, srv.Handler(), http.MethodGet, "/", "", nil).Body.String()
	if !strings.Contains(body, `class="dark"`) {
		t.Fatalf("expected dark class on root:\n%s", body)
	}
	if strings.Contains(body, `data-theme=`) {
		t.Fatalf("class strategy should not set data-theme:\n%s", body)
	}
}

func TestPageFormActions(t *testing.T) {
	srv, reg := newTestServer(t, Config{}, session.Options{})
	h := srv.Handler()

	first := do(t, h, http.MethodGet, "/", "", nil)
	id := first.Header().Get(SessionHeader)
	cookie := DefaultCookieName + "=" + id
	form := map[string]string{"Cookie": cookie, "Content-Type": "application/x-www-form-urlencoded"}

	rr := do(t, h, http.MethodPost, "/theme", "theme=dark", form)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	sess, ok := reg.Get(id)
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	if got := sess.State().Preference; got != theme.Dark {
		t.Fatalf("expected dark preference, got %s", got)
	}

	rr = do(t, h, http.MethodPost, "/theme", "theme=sepia", form)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="error"`) {
		t.Fatalf("expected error message in page")
	}

	rr = do(t, h, http.MethodPost, "/toggle", "", form)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if got := sess.State().Preference; got != theme.System {
		t.Fatalf("expected system after toggle, got %s", got)
	}

	rr = do(t, h, http.MethodPost, "/system", "preference=dark", form)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := sess.State().Resolved; got != theme.ResolvedDark {
		t.Fatalf("expected resolved dark, got %s", got)
	}
}

func TestPageForcedDisablesControls(t *testing.T) {
	cfg := theme.DefaultConfig()
	cfg.ForcedTheme = theme.Light
	srv, _ := newTestServer(t, Config{}, session.Options{Theme: cfg})

	body := do(t, srv.Handler(), http.MethodGet, "/", "", map[string]string{HintHeader: "dark"}).Body.String()
	if !strings.Contains(body, "disabled") {
		t.Fatalf("expected disabled controls when forced:\n%s", body)
	}
	if strings.Contains(body, `data-theme=`) || !strings.Contains(body, `style="color-scheme: light"`) {
		t.Fatalf("expected forced light on root:\n%s", body)
	}
}

func TestRenderPageIsStatic(t *testing.T) {
	root := dom.NewNode()
	dom.NewApplier(root, nil).Apply(theme.ResolvedDark, theme.DefaultConfig())

	var buf bytes.Buffer
	st := session.State{
		Preference: theme.Dark,
		System:     theme.ResolvedLight,
		Resolved:   theme.ResolvedDark,
		Themes:     theme.DefaultConfig().Themes(),
	}
	if err := RenderPage(&buf, st, root); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Fatalf("expected dark root:\n%s", body)
	}
	if strings.Contains(body, "EventSource") || strings.Contains(body, `action="/theme"`) {
		t.Fatalf("static page should carry no live controls:\n%s", body)
	}
}

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

const pageCSS = `:root { --bg: #ffffff; --fg: #1f2328; --muted: #59636e; --accent: #0969da; }
[data-theme="dark"], .dark { --bg: #0d1117; --fg: #e6edf3; --muted: #9198a1; --accent: #4493f8; }
body { margin: 0; font-family: system-ui, sans-serif; background: var(--bg); color: var(--fg); }
main { max-width: 32rem; margin: 4rem auto; padding: 0 1rem; }
dl { display: grid; grid-template-columns: max-content 1fr; gap: .25rem 1rem; }
dt { color: var(--muted); }
form { display: inline; }
button { margin-right: .5rem; padding: .4rem .9rem; border: 1px solid var(--accent); border-radius: 6px; background: transparent; color: var(--fg); cursor: pointer; }
button[aria-pressed="true"] { background: var(--accent); color: var(--bg); }
.error { color: #cf222e; }`

// pageJS reports the OS color scheme for browsers without the client hint
// and reloads when the session's resolved theme changes elsewhere.
const pageJS = `(() => {
  const mq = window.matchMedia("(prefers-color-scheme: dark)");
  const report = (dark) => fetch("/system", {
    method: "POST",
    body: new URLSearchParams({ preference: dark ? "dark" : "light" }),
  });
  if (document.documentElement.dataset.system !== (mq.matches ? "dark" : "light")) {
    report(mq.matches);
  }
  mq.addEventListener("change", (e) => report(e.matches));
  const resolved = document.documentElement.dataset.resolved;
  new EventSource("/stream").addEventListener("theme.resolved", (e) => {
    if (JSON.parse(e.data).resolved !== resolved) location.reload();
  });
})();`

// handlePage handles GET /. The root element's class, data-theme and style
// come from the session's applied state, so first paint is already themed.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, sessionPage(sessionFromContext(r.Context()), ""))
}

// handlePageSetTheme handles the POST /theme form.
func (s *Server) handlePageSetTheme(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, sessionPage(sess, "invalid form"))
		return
	}
	var err error
	sess.Do(func(e *theme.Engine) { err = e.SetTheme(theme.Theme(r.PostForm.Get("theme"))) })
	s.finishPageAction(w, r, sess, err)
}

// handlePageToggle handles the POST /toggle form.
func (s *Server) handlePageToggle(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var err error
	sess.Do(func(e *theme.Engine) { err = e.Toggle() })
	s.finishPageAction(w, r, sess, err)
}

// handlePageSystem handles the page script's POST /system.
func (s *Server) handlePageSystem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	resolved, err := theme.ParseResolved(r.PostForm.Get("preference"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	sess.SetSystemHint(resolved == theme.ResolvedDark)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) finishPageAction(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	status := http.StatusUnprocessableEntity
	if errors.Is(err, theme.ErrForced) || errors.Is(err, theme.ErrDestroyed) {
		status = http.StatusConflict
	}
	renderHTML(w, status, sessionPage(sess, err.Error()))
}

// RenderPage writes a static page for st whose root carries root's marks.
// The page has no live controls.
func RenderPage(w io.Writer, st session.State, root *dom.Node) error {
	return themePage(st, root, "", false).Render(w)
}

func sessionPage(sess *session.Session, errMsg string) Node {
	return themePage(sess.State(), sess.Root(), errMsg, true)
}

func themePage(st session.State, root *dom.Node, errMsg string, live bool) Node {
	buttons := make([]Node, 0, len(st.Themes))
	for _, t := range st.Themes {
		buttons = append(buttons, Form(
			Method("post"),
			Action("/theme"),
			Input(Type("hidden"), Name("theme"), Value(string(t))),
			Button(
				Type("submit"),
				Attr("aria-pressed", boolString(st.Preference == t)),
				If(st.Forced != "", Disabled()),
				Text(titleCase(string(t))),
			),
		))
	}

	content := []Node{
		H1(Text("shade")),
		Dl(
			Dt(Text("Preference")), Dd(Text(string(st.Preference))),
			Dt(Text("System")), Dd(Text(string(st.System))),
			Dt(Text("Resolved")), Dd(Text(string(st.Resolved))),
			If(st.Forced != "", Group{Dt(Text("Forced")), Dd(Text(string(st.Forced)))}),
		),
		If(live, P(Group(buttons))),
		If(live, Form(
			Method("post"),
			Action("/toggle"),
			Button(Type("submit"), If(st.Forced != "", Disabled()), Text("Toggle")),
		)),
	}
	if errMsg != "" {
		content = append([]Node{P(Class("error"), Text("Error: "+errMsg))}, content...)
	}

	return Doctype(
		HTML(
			Lang("en"),
			root.Attrs(),
			Data("resolved", string(st.Resolved)),
			Data("system", string(st.System)),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Meta(Name("color-scheme"), Content("light dark")),
				TitleEl(Text("shade")),
				StyleEl(Raw(pageCSS)),
			),
			Body(
				Main(Group(content)),
				If(live, Script(Raw(pageJS))),
			),
		),
	)
}

func renderHTML(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

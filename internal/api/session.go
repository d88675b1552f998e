package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

const (
	// DefaultCookieName is used when Config.CookieName is empty.
	DefaultCookieName = "shade_session"
	// SessionHeader carries the session id for clients without a cookie jar.
	SessionHeader = "X-Shade-Session"
	// HintHeader is the client hint carrying the OS color scheme.
	HintHeader = "Sec-CH-Prefers-Color-Scheme"
)

type sessionKey struct{}
type hintKey struct{}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

func hintFromContext(ctx context.Context) *bool {
	h, _ := ctx.Value(hintKey{}).(*bool)
	return h
}

// clientHintMiddleware asks browsers for the color-scheme client hint and
// records it when present.
func clientHintMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-CH", HintHeader)
		w.Header().Add("Vary", HintHeader)
		if dark, ok := media.ParseHint(r.Header.Get(HintHeader)); ok {
			r = r.WithContext(context.WithValue(r.Context(), hintKey{}, &dark))
		}
		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware attaches the caller's session, creating one when the
// request carries no known id.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if c, err := r.Cookie(s.config.CookieName); err == nil && c.Value != "" {
			id = c.Value
		}

		sess, created, err := s.sessions.Open(id, hintFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, session.ErrClosed) {
				s.writeError(w, http.StatusServiceUnavailable, "server is shutting down")
				return
			}
			s.logger.Error("failed to open session", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to open session")
			return
		}

		// With auto-init disabled the page host initializes on first use.
		sess.Do(func(e *theme.Engine) {
			if e.State() == theme.StateUninitialized {
				e.Initialize(theme.Interactive)
			}
		})

		if created || id != sess.ID {
			http.SetCookie(w, &http.Cookie{
				Name:     s.config.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, sess.ID)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

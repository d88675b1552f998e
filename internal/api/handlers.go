package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mattjoyce/shade/internal/config"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Sessions:      s.sessions.Len(),
	})
}

// handleGetTheme handles GET /api/theme. The ETag is the BLAKE3 hash of the
// state document, so polling clients can revalidate cheaply.
func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	body, etag, err := stateBody(sess.State())
	if err != nil {
		s.logger.Error("failed to encode theme state", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to encode theme state")
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleSetTheme handles PUT /api/theme.
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Theme == "" {
		s.writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	sess := sessionFromContext(r.Context())
	var err error
	sess.Do(func(e *theme.Engine) { err = e.SetTheme(theme.Theme(req.Theme)) })
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeState(w, sess)
}

// handleToggle handles POST /api/theme/toggle.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var err error
	sess.Do(func(e *theme.Engine) { err = e.Toggle() })
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeState(w, sess)
}

// handleSetSystem handles PUT /api/system: the client reports its OS
// color scheme when it cannot send the client hint.
func (s *Server) handleSetSystem(w http.ResponseWriter, r *http.Request) {
	var req SetSystemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resolved, err := theme.ParseResolved(req.Preference)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sess := sessionFromContext(r.Context())
	if !sess.AcceptsHints() {
		s.writeError(w, http.StatusConflict, "system preference is provided by the server ("+s.config.SystemSource+")")
		return
	}
	// Outside Do: the hint notifies the watcher, which dispatches into the
	// session itself.
	sess.SetSystemHint(resolved == theme.ResolvedDark)
	s.writeState(w, sess)
}

// handleGetConfig handles GET /api/config.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.sessions.Config()
	respondJSON(w, http.StatusOK, ConfigResponse{
		Theme:        cfg,
		Themes:       cfg.Themes(),
		SystemSource: s.config.SystemSource,
		Diagnostics:  s.config.Diagnostics,
	})
}

func (s *Server) writeState(w http.ResponseWriter, sess *session.Session) {
	body, etag, err := stateBody(sess.State())
	if err != nil {
		s.logger.Error("failed to encode theme state", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to encode theme state")
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, theme.ErrForced):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, theme.ErrUnsupported):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, theme.ErrDestroyed):
		s.writeError(w, http.StatusGone, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// stateBody encodes st and derives its strong ETag.
func stateBody(st session.State) ([]byte, string, error) {
	body, err := json.Marshal(st)
	if err != nil {
		return nil, "", err
	}
	return body, `"` + config.HashBytes(body) + `"`, nil
}

// respondJSON is a helper to write JSON responses
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

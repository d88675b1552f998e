package api

import (
	"github.com/mattjoyce/shade/internal/theme"
)

// SetThemeRequest is the JSON body for PUT /api/theme.
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// SetSystemRequest is the JSON body for PUT /api/system.
type SetSystemRequest struct {
	Preference string `json:"preference"`
}

// ConfigResponse is returned by GET /api/config.
type ConfigResponse struct {
	Theme        theme.Config       `json:"theme"`
	Themes       []theme.Theme      `json:"themes"`
	SystemSource string             `json:"system_source"`
	Diagnostics  []theme.Diagnostic `json:"diagnostics,omitempty"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Sessions      int    `json:"sessions"`
}

// Package theme resolves a light/dark/system preference into the concrete
// theme applied to a document, and keeps that value current as the user's
// choice and the operating system's dark-mode signal change.
package theme

import "fmt"

// Theme is the user's intent.
type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// Valid reports whether t is one of light, dark or system.
func (t Theme) Valid() bool {
	switch t {
	case Light, Dark, System:
		return true
	}
	return false
}

// ParseTheme converts a stored or user-supplied string into a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid theme %q (want light, dark or system)", s)
	}
	return t, nil
}

// Resolved is the value actually rendered. It is never "system".
type Resolved string

const (
	ResolvedLight Resolved = "light"
	ResolvedDark  Resolved = "dark"
)

// Valid reports whether r is light or dark.
func (r Resolved) Valid() bool {
	return r == ResolvedLight || r == ResolvedDark
}

// ParseResolved converts "light"/"dark" into a Resolved value.
func ParseResolved(s string) (Resolved, error) {
	r := Resolved(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid resolved theme %q (want light or dark)", s)
	}
	return r, nil
}

// Strategy selects how the resolved theme is marked on the document root.
type Strategy string

const (
	StrategyAttribute Strategy = "attribute"
	StrategyClass     Strategy = "class"
)

// Valid reports whether s is attribute or class.
func (s Strategy) Valid() bool {
	return s == StrategyAttribute || s == StrategyClass
}

// ExecutionContext tells Initialize whether it runs for an interactive
// document or while rendering markup on the server.
type ExecutionContext int

const (
	Interactive ExecutionContext = iota
	ServerRender
)

func (c ExecutionContext) String() string {
	if c == ServerRender {
		return "server"
	}
	return "interactive"
}

// State is the engine lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

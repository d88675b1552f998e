package dom

import (
	"fmt"
	"log/slog"

	"github.com/mattjoyce/shade/internal/theme"
)

const (
	darkClass     = "dark"
	themeAttr     = "data-theme"
	colorSchemeProp = "color-scheme"
)

// Applier writes the resolved theme onto a root element. It satisfies
// theme.Applier.
type Applier struct {
	root   Element
	logger *slog.Logger
}

func NewApplier(root Element, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{root: root, logger: logger}
}

// Apply marks resolved on the root using cfg's strategy and, when enabled,
// sets the color-scheme style. Each step fails independently and failures
// are only logged.
func (a *Applier) Apply(resolved theme.Resolved, cfg theme.Config) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("failed to apply theme", "theme", resolved, "error", fmt.Sprint(r))
		}
	}()
	if a.root == nil {
		a.logger.Error("failed to apply theme", "theme", resolved, "error", "no root element")
		return
	}

	if cfg.Strategy == theme.StrategyClass {
		a.applyClass(resolved)
	} else {
		a.applyAttribute(resolved)
	}

	if cfg.EnableColorScheme {
		if err := a.root.SetStyle(colorSchemeProp, string(resolved)); err != nil {
			a.logger.Warn("failed to apply color scheme", "theme", resolved, "error", err)
		}
	}
}

func (a *Applier) applyClass(resolved theme.Resolved) {
	var err error
	if resolved == theme.ResolvedDark {
		err = a.root.AddClass(darkClass)
	} else {
		err = a.root.RemoveClass(darkClass)
	}
	if err != nil {
		a.logger.Warn("failed to apply class theme", "theme", resolved, "error", err)
	}
}

func (a *Applier) applyAttribute(resolved theme.Resolved) {
	var err error
	if resolved == theme.ResolvedDark {
		err = a.root.SetAttribute(themeAttr, string(theme.ResolvedDark))
	} else {
		err = a.root.RemoveAttribute(themeAttr)
	}
	if err != nil {
		a.logger.Warn("failed to apply attribute theme", "theme", resolved, "error", err)
	}
}

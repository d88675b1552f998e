package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mattjoyce/shade/internal/browser"
)

// BrowserElement is document.documentElement in a live browser tab.
type BrowserElement struct {
	ev      browser.Evaluator
	timeout time.Duration
}

func NewBrowserElement(ev browser.Evaluator) *BrowserElement {
	return &BrowserElement{ev: ev, timeout: 5 * time.Second}
}

func (b *BrowserElement) AddClass(name string) error {
	return b.run("document.documentElement.classList.add(%s)", name)
}

func (b *BrowserElement) RemoveClass(name string) error {
	return b.run("document.documentElement.classList.remove(%s)", name)
}

func (b *BrowserElement) SetAttribute(name, value string) error {
	return b.run("document.documentElement.setAttribute(%s, %s)", name, value)
}

func (b *BrowserElement) RemoveAttribute(name string) error {
	return b.run("document.documentElement.removeAttribute(%s)", name)
}

func (b *BrowserElement) SetStyle(property, value string) error {
	return b.run("document.documentElement.style.setProperty(%s, %s)", property, value)
}

// run formats a statement with JSON-quoted arguments and evaluates it as
// an expression yielding true.
func (b *BrowserElement) run(format string, args ...string) error {
	quoted := make([]any, len(args))
	for i, a := range args {
		q, err := json.Marshal(a)
		if err != nil {
			return err
		}
		quoted[i] = string(q)
	}
	expr := "(() => { " + fmt.Sprintf(format, quoted...) + "; return true })()"

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	var ok bool
	if err := b.ev.Eval(ctx, expr, &ok); err != nil {
		return fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return nil
}

// Package dom marks the resolved theme on a document root element.
package dom

import (
	"slices"
	"sort"
	"strings"
	"sync"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Element is the subset of a DOM element the applier writes to.
type Element interface {
	AddClass(name string) error
	RemoveClass(name string) error
	SetAttribute(name, value string) error
	RemoveAttribute(name string) error
	SetStyle(property, value string) error
}

// Node is an in-memory document root. The server renders it onto <html>.
type Node struct {
	mu      sync.RWMutex
	classes []string
	attrs   map[string]string
	style   map[string]string
}

func NewNode() *Node {
	return &Node{attrs: map[string]string{}, style: map[string]string{}}
}

func (n *Node) AddClass(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.classes, name) {
		n.classes = append(n.classes, name)
	}
	return nil
}

func (n *Node) RemoveClass(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == name })
	return nil
}

func (n *Node) SetAttribute(name, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
	return nil
}

func (n *Node) RemoveAttribute(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.attrs, name)
	return nil
}

func (n *Node) SetStyle(property, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.style[property] = value
	return nil
}

// Snapshot is a copy of a Node's state.
type Snapshot struct {
	Classes    []string          `json:"classes"`
	Attributes map[string]string `json:"attributes"`
	Style      map[string]string `json:"style"`
}

func (n *Node) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s := Snapshot{
		Classes:    slices.Clone(n.classes),
		Attributes: make(map[string]string, len(n.attrs)),
		Style:      make(map[string]string, len(n.style)),
	}
	if s.Classes == nil {
		s.Classes = []string{}
	}
	for k, v := range n.attrs {
		s.Attributes[k] = v
	}
	for k, v := range n.style {
		s.Style[k] = v
	}
	return s
}

// HasClass reports whether name is in the class list.
func (n *Node) HasClass(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Contains(n.classes, name)
}

// Attribute returns the attribute value and whether it is set.
func (n *Node) Attribute(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.attrs[name]
	return v, ok
}

// Style returns the inline style property value.
func (n *Node) Style(property string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.style[property]
}

// StyleText renders the inline style as "a: b; c: d" in property order.
func (s Snapshot) StyleText() string {
	props := make([]string, 0, len(s.Style))
	for p := range s.Style {
		props = append(props, p)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p+": "+s.Style[p])
	}
	return strings.Join(parts, "; ")
}

// Attrs renders the node's state as gomponents attributes.
func (n *Node) Attrs() g.Group {
	s := n.Snapshot()
	var nodes g.Group
	if len(s.Classes) > 0 {
		nodes = append(nodes, h.Class(strings.Join(s.Classes, " ")))
	}
	names := make([]string, 0, len(s.Attributes))
	for name := range s.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		nodes = append(nodes, g.Attr(name, s.Attributes[name]))
	}
	if style := s.StyleText(); style != "" {
		nodes = append(nodes, h.Style(style))
	}
	return nodes
}

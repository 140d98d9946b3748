// Package styles holds the visual themes shared by the diagram renderers.
package styles

import (
	"slices"
	"strings"

	"github.com/matzehuels/ruleviz/pkg/errors"
)

// Theme is a named palette.
type Theme struct {
	Name       string
	Background string
	Frame      string
	Node       string
	NodeStroke string
	Text       string
	Edge       string
	// Highlight marks challenge edges that the rule ignores.
	Highlight string
	// Context colors background groups in the output row.
	Context string
	// Palette colors changed groups by reveal order.
	Palette []string
	Font    string
}

// GroupColor returns the fill for a group with the given reveal order.
func (t Theme) GroupColor(order int, context bool) string {
	if context || len(t.Palette) == 0 {
		return t.Context
	}
	return t.Palette[order%len(t.Palette)]
}

var (
	// Simple is the default light theme.
	Simple = Theme{
		Name:       "simple",
		Background: "#ffffff",
		Frame:      "#d0d4da",
		Node:       "#f4f5f7",
		NodeStroke: "#4a4f57",
		Text:       "#1d2025",
		Edge:       "#4a4f57",
		Highlight:  "#d64545",
		Context:    "#c2c7cf",
		Palette:    []string{"#3b82c4", "#e69a28", "#3f9e5a", "#9461c9", "#c94f7c", "#2aa3a3"},
		Font:       "ui-monospace, Menlo, monospace",
	}

	// Contrast is a dark theme for projectors.
	Contrast = Theme{
		Name:       "contrast",
		Background: "#111418",
		Frame:      "#3a3f47",
		Node:       "#1f242b",
		NodeStroke: "#e6e8eb",
		Text:       "#f4f5f7",
		Edge:       "#9aa1ab",
		Highlight:  "#ff6b6b",
		Context:    "#5b616b",
		Palette:    []string{"#5fb3ff", "#ffc04d", "#6fdc8c", "#c39bff", "#ff8fb8", "#5fe0e0"},
		Font:       "ui-monospace, Menlo, monospace",
	}
)

var themes = []Theme{Simple, Contrast}

// Names lists the built-in theme names.
func Names() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the built-in theme called name. An empty name selects
// [Simple].
func Lookup(name string) (Theme, error) {
	if name == "" {
		return Simple, nil
	}
	i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == strings.ToLower(name) })
	if i < 0 {
		return Theme{}, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return themes[i], nil
}

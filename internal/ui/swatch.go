package ui

import (
	"github.com/charmbracelet/lipgloss"

	"themeforge/internal/colorengine"
)

// Foregrounds used on top of a swatch.
const (
	swatchInkDark  = "#000000"
	swatchInkLight = "#ffffff"
)

// Swatch paints label on a block of the given color. The ink flips to white
// on dark colors. Invalid colors, or a plain terminal, return label unchanged.
func Swatch(hex, label string) string {
	if !IsRich() {
		return label
	}
	long, err := colorengine.Normalize(hex)
	if err != nil {
		return label
	}
	dark, err := colorengine.IsDark(long)
	if err != nil {
		return label
	}

	ink := swatchInkDark
	if dark {
		ink = swatchInkLight
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(long)).
		Foreground(lipgloss.Color(ink)).
		Padding(0, 1).
		Render(label)
}

// SwatchStrip renders colors side by side with no labels.
func SwatchStrip(colors ...string) string {
	blocks := make([]string, 0, len(colors))
	for _, c := range colors {
		blocks = append(blocks, Swatch(c, "      "))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

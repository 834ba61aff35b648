package ui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// ANSI escape code patterns
var (
	// SGR (Select Graphic Rendition) codes: ESC[...m
	ansiSGRPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// OSC-8 hyperlink codes: ESC]8;;...ESC\ or ESC]8;;ESC\
	osc8Pattern = regexp.MustCompile(`\x1b\]8;;[^\x1b]*\x1b\\|\x1b\]8;;\x1b\\`)
)

// StripAnsi removes all ANSI escape codes from a string
func StripAnsi(input string) string {
	result := osc8Pattern.ReplaceAllString(input, "")
	return ansiSGRPattern.ReplaceAllString(result, "")
}

// VisibleWidth returns the terminal cell width of a string, ignoring ANSI
// codes. Wide runes such as emoji count as two cells.
func VisibleWidth(input string) int {
	return lipgloss.Width(StripAnsi(input))
}

// spaces returns a string of n spaces
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

package theme

import (
	"fmt"
	"strings"

	"themeforge/internal/colorengine"
)

// Default intensities applied to the base color.
const (
	DefaultShade = -0.3
	DefaultTint  = 0.75
)

// Style variable and class names set on the page root.
const (
	VarDark  = "--dark-bg"
	VarMain  = "--main-bg"
	VarLight = "--light-bg"

	DarkModeClass = "m-dark-mode"
)

// Intensities controls how far the darker and lighter variants move.
type Intensities struct {
	Shade float64
	Tint  float64
}

// DefaultIntensities returns the page's built-in shade and tint.
func DefaultIntensities() Intensities {
	return Intensities{Shade: DefaultShade, Tint: DefaultTint}
}

// Theme is a base color with its derived variants.
type Theme struct {
	Base     string `json:"base"`
	Dark     string `json:"dark"`
	Light    string `json:"light"`
	DarkMode bool   `json:"darkMode"`
}

// Var is a single named style variable.
type Var struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Derive builds a Theme from base. Base is kept as given.
func Derive(base string, in Intensities) (Theme, error) {
	dark, err := colorengine.IsDark(base)
	if err != nil {
		return Theme{}, err
	}
	shade, err := colorengine.Adjust(base, in.Shade)
	if err != nil {
		return Theme{}, fmt.Errorf("shade: %w", err)
	}
	tint, err := colorengine.Adjust(base, in.Tint)
	if err != nil {
		return Theme{}, fmt.Errorf("tint: %w", err)
	}

	return Theme{
		Base:     base,
		Dark:     shade,
		Light:    tint,
		DarkMode: dark,
	}, nil
}

// Vars returns the style variables in the order they are applied.
func (t Theme) Vars() []Var {
	return []Var{
		{Name: VarDark, Value: t.Dark},
		{Name: VarMain, Value: t.Base},
		{Name: VarLight, Value: t.Light},
	}
}

// Classes returns the root classes that should be present for this theme.
func (t Theme) Classes() []string {
	if t.DarkMode {
		return []string{DarkModeClass}
	}
	return nil
}

// ValidSelector accepts a conservative subset of CSS selectors so a
// caller-supplied value cannot inject extra rules.
func ValidSelector(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune(":.#-_ >[]=\"", c):
		default:
			return false
		}
	}
	return true
}

// CSS renders the theme as a single rule for selector.
func (t Theme) CSS(selector string) string {
	if selector == "" {
		selector = ":root"
	}

	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, v := range t.Vars() {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	if t.DarkMode {
		b.WriteString("  color-scheme: dark;\n")
	}
	b.WriteString("}\n")
	return b.String()
}

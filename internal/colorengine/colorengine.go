package colorengine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Luminance weights and the dark/light threshold.
// These reproduce the page's classifier exactly; do not tune them.
const (
	LumaRed   = 0.2126
	LumaGreen = 0.7152
	LumaBlue  = 0.0722

	DarkThreshold = 100.0
)

// Encoded lengths including the leading '#'.
const (
	ShortLen = 4
	LongLen  = 7
)

var (
	// ErrInvalidColorFormat is returned when input is not #rgb or #rrggbb.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrInvalidIntensity is returned by Adjust for NaN or infinite percent.
	ErrInvalidIntensity = errors.New("invalid intensity")
)

// RGB holds the three 8-bit channels of a color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex encodes the triple as a lowercase long-form color.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Expand turns a short-form color (#abc) into its long form (#aabbcc).
func Expand(short string) (string, error) {
	if len(short) != ShortLen || short[0] != '#' || !isHex(short[1:]) {
		return "", fmt.Errorf("%w: %q is not a short-form color", ErrInvalidColorFormat, short)
	}

	var b strings.Builder
	b.Grow(LongLen)
	b.WriteByte('#')
	for i := 1; i < ShortLen; i++ {
		b.WriteByte(short[i])
		b.WriteByte(short[i])
	}
	return b.String(), nil
}

// Parse decodes a short or long form color into its channels.
func Parse(color string) (RGB, error) {
	hex := color
	switch len(color) {
	case ShortLen:
		var err error
		if hex, err = Expand(color); err != nil {
			return RGB{}, err
		}
	case LongLen:
	default:
		return RGB{}, fmt.Errorf("%w: %q has length %d, want %d or %d",
			ErrInvalidColorFormat, color, len(color), ShortLen, LongLen)
	}
	if hex[0] != '#' {
		return RGB{}, fmt.Errorf("%w: %q does not start with '#'", ErrInvalidColorFormat, color)
	}

	r, err := parseChannel(hex[1:3])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q red channel: %v", ErrInvalidColorFormat, color, err)
	}
	g, err := parseChannel(hex[3:5])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q green channel: %v", ErrInvalidColorFormat, color, err)
	}
	b, err := parseChannel(hex[5:7])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q blue channel: %v", ErrInvalidColorFormat, color, err)
	}
	return RGB{R: r, G: g, B: b}, nil
}

// Luminance is the weighted channel sum used by IsDark.
// It is not gamma corrected.
func Luminance(c RGB) float64 {
	// float64 conversions prevent FMA fusion; results must match at the threshold
	l := float64(LumaRed * float64(c.R))
	l += float64(LumaGreen * float64(c.G))
	l += float64(LumaBlue * float64(c.B))
	return l
}

// IsDark reports whether the color's luminance is strictly below DarkThreshold.
func IsDark(color string) (bool, error) {
	c, err := Parse(color)
	if err != nil {
		return false, err
	}
	return Luminance(c) < DarkThreshold, nil
}

// Adjust scales every channel by (1 + percent), clamps to [0, 255] and rounds.
// Negative percent shades, positive percent tints. A zero channel stays zero.
func Adjust(color string, percent float64) (string, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return "", fmt.Errorf("%w: %v", ErrInvalidIntensity, percent)
	}
	c, err := Parse(color)
	if err != nil {
		return "", err
	}

	out := RGB{
		R: adjustChannel(c.R, percent),
		G: adjustChannel(c.G, percent),
		B: adjustChannel(c.B, percent),
	}
	return out.Hex(), nil
}

// Normalize returns the long lowercase form of a valid color.
func Normalize(color string) (string, error) {
	c, err := Parse(color)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Valid reports whether color matches #rgb or #rrggbb.
func Valid(color string) bool {
	_, err := Parse(color)
	return err == nil
}

func adjustChannel(v uint8, percent float64) uint8 {
	f := float64(v)
	f += float64(f * percent)
	f = math.Min(255, math.Max(0, f))
	return uint8(math.Round(f))
}

// parseChannel parses exactly two hex digits.
func parseChannel(pair string) (uint8, error) {
	if len(pair) != 2 || !isHex(pair) {
		return 0, fmt.Errorf("%q is not a hex pair", pair)
	}
	v, err := strconv.ParseUint(pair, 16, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

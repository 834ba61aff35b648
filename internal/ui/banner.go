package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Brand colors shown under the banner title.
var brandColors = []string{"#24478f", "#3366cc", "#59b3ff"}

var bannerEmitted = false

// EmitBanner displays a boxed banner once, and only on a terminal.
func EmitBanner(w io.Writer, version, tagline string) {
	if bannerEmitted || !isTTY() {
		return
	}
	writeBanner(w, version, tagline)
	bannerEmitted = true
}

func writeBanner(w io.Writer, version, tagline string) {
	const width = 60

	badge := badgePrimary.Sprint(" ◆ THEMEFORGE ")
	head := fmt.Sprintf("%s %s  %s", badge, Muted(version), SwatchStrip(brandColors...))

	fmt.Fprintln(w)
	fmt.Fprintln(w, Muted(boxTopLeft+strings.Repeat(boxHorizontal, width)+boxTopRight))
	for _, line := range []string{head, Subtle(tagline)} {
		pad := width - 2 - VisibleWidth(line)
		fmt.Fprintf(w, "%s  %s%s%s\n", Muted(boxVertical), line, spaces(pad), Muted(boxVertical))
	}
	fmt.Fprintln(w, Muted(boxBottomLeft+strings.Repeat(boxHorizontal, width)+boxBottomRight))
	fmt.Fprintln(w)
}

// isTTY checks if stdout is a terminal
func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

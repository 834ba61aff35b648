package ui

import (
	"fmt"
	"io"
	"strings"
)

// Note writes a boxed message with an optional title.
func Note(w io.Writer, message, title string) {
	lines := strings.Split(message, "\n")

	maxWidth := VisibleWidth(title) + 2
	for _, line := range lines {
		if lw := VisibleWidth(line); lw > maxWidth {
			maxWidth = lw
		}
	}
	boxWidth := maxWidth + 2

	fmt.Fprintln(w)
	if title != "" {
		styled := title
		if IsRich() {
			styled = Heading(title)
		}
		fmt.Fprintf(w, "%s %s %s\n",
			Muted(boxTopLeft+strings.Repeat(boxHorizontal, 2)),
			styled,
			Muted(strings.Repeat(boxHorizontal, boxWidth-4-VisibleWidth(title))+boxTopRight))
	} else {
		fmt.Fprintln(w, Muted(boxTopLeft+strings.Repeat(boxHorizontal, boxWidth)+boxTopRight))
	}

	for _, line := range lines {
		fmt.Fprintf(w, "%s %s%s %s\n",
			Muted(boxVertical),
			line,
			spaces(maxWidth-VisibleWidth(line)),
			Muted(boxVertical))
	}

	fmt.Fprintln(w, Muted(boxBottomLeft+strings.Repeat(boxHorizontal, boxWidth)+boxBottomRight))
	fmt.Fprintln(w)
}

// ErrorNote displays an error-styled note
func ErrorNote(w io.Writer, message string) {
	Note(w, message, "✗ Error")
}

package ui

import (
	"strings"
)

// Align type for table column alignment
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// TableColumn defines a column in a table
type TableColumn struct {
	Key      string
	Header   string
	Align    Align
	MinWidth int
}

// TableBorder style for tables
type TableBorder int

const (
	BorderUnicode TableBorder = iota
	BorderASCII
)

// RenderTableOptions configures table rendering
type RenderTableOptions struct {
	Columns []TableColumn
	Rows    []map[string]string
	Border  TableBorder
}

type boxChars struct {
	tl, tr, bl, br string
	h, v           string
	t, ml, m, mr, b string
}

var (
	unicodeBox = boxChars{
		tl: "┌", tr: "┐", bl: "└", br: "┘",
		h: "─", v: "│",
		t: "┬", ml: "├", m: "┼", mr: "┤", b: "┴",
	}
	asciiBox = boxChars{
		tl: "+", tr: "+", bl: "+", br: "+",
		h: "-", v: "|",
		t: "+", ml: "+", m: "+", mr: "+", b: "+",
	}
)

// RenderTable renders a bordered table. Cell widths ignore ANSI codes, so
// swatches and styled text line up.
func RenderTable(opts RenderTableOptions) string {
	box := unicodeBox
	if opts.Border == BorderASCII {
		box = asciiBox
	}

	widths := make([]int, len(opts.Columns))
	for i, col := range opts.Columns {
		w := VisibleWidth(col.Header)
		for _, row := range opts.Rows {
			if cw := VisibleWidth(row[col.Key]); cw > w {
				w = cw
			}
		}
		if w < col.MinWidth {
			w = col.MinWidth
		}
		widths[i] = w
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat(box.h, w+2)
		}
		return left + strings.Join(parts, mid) + right
	}

	row := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = " " + alignCell(cell, widths[i], opts.Columns[i].Align) + " "
		}
		return box.v + strings.Join(parts, box.v) + box.v
	}

	headers := make([]string, len(opts.Columns))
	for i, col := range opts.Columns {
		headers[i] = col.Header
	}

	lines := []string{
		rule(box.tl, box.t, box.tr),
		row(headers),
		rule(box.ml, box.m, box.mr),
	}
	for _, r := range opts.Rows {
		cells := make([]string, len(opts.Columns))
		for i, col := range opts.Columns {
			cells[i] = r[col.Key]
		}
		lines = append(lines, row(cells))
	}
	lines = append(lines, rule(box.bl, box.b, box.br))

	return strings.Join(lines, "\n") + "\n"
}

func alignCell(text string, width int, align Align) string {
	pad := width - VisibleWidth(text)
	if pad <= 0 {
		return text
	}
	switch align {
	case AlignRight:
		return spaces(pad) + text
	case AlignCenter:
		left := pad / 2
		return spaces(left) + text + spaces(pad-left)
	default:
		return text + spaces(pad)
	}
}

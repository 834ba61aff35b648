package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"themeforge/internal/theme"
	"themeforge/internal/ui"
)

func runDerive(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	fs.SetOutput(stderr)
	shade := fs.Float64("shade", theme.DefaultShade, "intensity of the darker variant")
	tint := fs.Float64("tint", theme.DefaultTint, "intensity of the lighter variant")
	asCSS := fs.Bool("css", false, "print a CSS rule")
	asJSON := fs.Bool("json", false, "print JSON")
	selector := fs.String("selector", ":root", "selector used with --css")

	if err := fs.Parse(reorder(args)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		ui.ErrorNote(stderr, "derive takes exactly one color")
		return 2
	}
	if !theme.ValidSelector(*selector) {
		ui.ErrorNote(stderr, fmt.Sprintf("invalid selector %q", *selector))
		return 2
	}

	th, err := theme.Derive(normalizeArg(fs.Arg(0)), theme.Intensities{Shade: *shade, Tint: *tint})
	if err != nil {
		ui.ErrorNote(stderr, err.Error())
		return 1
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(th); err != nil {
			ui.ErrorNote(stderr, err.Error())
			return 1
		}
	case *asCSS:
		fmt.Fprint(stdout, th.CSS(*selector))
	default:
		fmt.Fprint(stdout, renderTheme(th))
	}
	return 0
}

func renderTheme(th theme.Theme) string {
	rows := make([]map[string]string, 0, 3)
	for _, v := range th.Vars() {
		rows = append(rows, map[string]string{
			"var":    v.Name,
			"color":  v.Value,
			"swatch": ui.Swatch(v.Value, v.Value),
		})
	}

	mode := ui.Success("light")
	if th.DarkMode {
		mode = ui.Info("dark") + ui.Muted(" (."+theme.DarkModeClass+")")
	}

	return ui.RenderTable(ui.RenderTableOptions{
		Columns: []ui.TableColumn{
			{Key: "var", Header: "Variable"},
			{Key: "color", Header: "Color", MinWidth: 7},
			{Key: "swatch", Header: "Swatch", Align: ui.AlignCenter, MinWidth: 9},
		},
		Rows: rows,
	}) + fmt.Sprintf("%s %s\n", ui.Muted("mode:"), mode)
}

// reorder moves flags ahead of positional args so "derive abc --css" works.
func reorder(args []string) []string {
	var flags, pos []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			pos = append(pos, args[i+1:]...)
			return append(flags, append([]string{"--"}, pos...)...)
		case len(a) > 1 && a[0] == '-' && !isNegativeNumber(a):
			flags = append(flags, a)
			if needsValue(a) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			pos = append(pos, a)
		}
	}
	return append(flags, pos...)
}

// needsValue reports whether a flag is given as "--name value".
func needsValue(a string) bool {
	for _, name := range []string{"shade", "tint", "selector", "config"} {
		if a == "-"+name || a == "--"+name {
			return true
		}
	}
	return false
}

func isNegativeNumber(a string) bool {
	_, err := strconv.ParseFloat(a, 64)
	return err == nil
}

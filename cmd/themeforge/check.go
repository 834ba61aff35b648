package main

import (
	"fmt"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"

	"themeforge/internal/colorengine"
	"themeforge/internal/ui"
)

func runCheck(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		ui.ErrorNote(stderr, "check takes at least one color")
		return 2
	}

	code := 0
	rows := make([]map[string]string, 0, len(args))
	for _, arg := range args {
		c := normalizeArg(arg)
		rgb, err := colorengine.Parse(c)
		if err != nil {
			ui.ErrorNote(stderr, err.Error())
			code = 1
			continue
		}
		rows = append(rows, checkRow(c, rgb))
	}

	if len(rows) > 0 {
		fmt.Fprint(stdout, ui.RenderTable(ui.RenderTableOptions{
			Columns: []ui.TableColumn{
				{Key: "color", Header: "Color"},
				{Key: "rgb", Header: "RGB"},
				{Key: "hsl", Header: "HSL"},
				{Key: "luma", Header: "Luminance", Align: ui.AlignRight},
				{Key: "mode", Header: "Mode"},
			},
			Rows: rows,
		}))
	}
	return code
}

func checkRow(c string, rgb colorengine.RGB) map[string]string {
	luma := colorengine.Luminance(rgb)
	mode := "light"
	if luma < colorengine.DarkThreshold {
		mode = "dark"
	}

	h, s, l := colorful.Color{
		R: float64(rgb.R) / 255,
		G: float64(rgb.G) / 255,
		B: float64(rgb.B) / 255,
	}.Hsl()

	return map[string]string{
		"color": ui.Swatch(c, c),
		"rgb":   fmt.Sprintf("%d, %d, %d", rgb.R, rgb.G, rgb.B),
		"hsl":   fmt.Sprintf("%.0f°, %.0f%%, %.0f%%", h, s*100, l*100),
		"luma":  fmt.Sprintf("%.2f", luma),
		"mode":  mode,
	}
}

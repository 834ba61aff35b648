package ui

import (
	"math/rand"
	"time"
)

// Default tagline fallback
const defaultTagline = "Palettes from a single color"

var taglines = []string{
	"Palettes from a single color",
	"One base, three shades",
	"Tints and shades, no guesswork",
	"Your color, darker and lighter",
	"Dark mode by the numbers",
}

// Holiday-specific taglines
var holidayTaglines = []taglineRule{
	{month: 12, day: 25, tagline: "🎄 Evergreen and candy-cane red"},
	{month: 10, day: 31, tagline: "🎃 Pumpkin orange, shaded to midnight"},
	{month: 2, day: 14, tagline: "💘 Every shade of pink"},
	{month: 1, day: 1, tagline: "🎉 A fresh palette for a new year"},
}

type taglineRule struct {
	month   int
	day     int
	tagline string
}

// PickTagline returns a random tagline, considering holidays
func PickTagline() string {
	return pickTagline(time.Now())
}

func pickTagline(now time.Time) string {
	month := int(now.Month())
	day := now.Day()

	for _, rule := range holidayTaglines {
		if rule.month == month && rule.day == day {
			return rule.tagline
		}
	}

	if len(taglines) == 0 {
		return defaultTagline
	}

	r := rand.New(rand.NewSource(now.UnixNano()))
	return taglines[r.Intn(len(taglines))]
}

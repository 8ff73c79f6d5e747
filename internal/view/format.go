package view

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numbers groups thousands with "." as the dashboard always has.
var numbers = message.NewPrinter(language.German)

// FormatNumber renders n with "." as the thousands separator.
func FormatNumber(n int) string {
	return numbers.Sprintf("%d", n)
}

// FormatDelta renders n with an explicit sign and "." grouping.
func FormatDelta(n int) string {
	switch {
	case n > 0:
		return "+" + FormatNumber(n)
	case n < 0:
		return "-" + FormatNumber(-n)
	default:
		return "0"
	}
}

// Truncate shortens s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// resultLabel is the text of a search result button: the name plus up to
// two genres.
func resultLabel(name string, genres []string) string {
	g := "No genres"
	if len(genres) > 0 {
		g = strings.Join(genres[:min(2, len(genres))], ", ")
	}
	return Truncate(name, nameLimit) + " (" + Truncate(g, genreLimit) + ")"
}

const (
	nameLimit  = 20
	genreLimit = 25
)

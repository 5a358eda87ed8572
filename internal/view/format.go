package view

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Decimal places of amounts shown in messages
const (
	PlacesPlan        = 3
	PlacesTransaction = 2
	PlacesSummary     = 1
)

// FormatThousands renders a value stored in units as thousands rounded to
// places. At least one fractional digit is kept: 10000 is "10.0".
func FormatThousands(v decimal.Decimal, places int32) string {
	s := v.Div(thousand).Round(places).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func escape(s string) string {
	return html.EscapeString(s)
}

// padRight fills s with fill up to width characters. Longer values are
// left as is.
func padRight(s string, width int, fill rune) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(string(fill), width-n)
}

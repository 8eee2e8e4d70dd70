package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Brazilian Portuguese groups thousands with '.'.
var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatThousands renders n with '.' as the thousands separator.
func FormatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent renders an on-bar percentage label, e.g. "66.67%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

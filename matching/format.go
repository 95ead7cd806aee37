package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"smartmatch/listing"
)

// formatBaht renders whole baht with thousands separators.
func formatBaht(v float64) string {
	return message.NewPrinter(language.English).Sprintf("฿%d", int64(v+0.5))
}

func typeLabel(t listing.PropertyType) string {
	return cases.Title(language.English).String(strings.ToLower(string(t)))
}

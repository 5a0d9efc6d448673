package scaffolding

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Underscore converts a dotted technical name to its file form,
// e.g. "sale.order" becomes "sale_order".
func Underscore(model string) string {
	return strings.ReplaceAll(model, ".", "_")
}

// ClassName converts a technical name to a Python class name,
// e.g. "sale.order" becomes "SaleOrder".
func ClassName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, part := range parts {
		parts[i] = titleCaser.String(part)
	}
	return strings.Join(parts, "")
}

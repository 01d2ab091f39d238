// Package view holds the embedded HTML templates rendered by the handlers.
package view

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

const placeholder = "-"

// Load parses every embedded template. Each page is addressed by its file name.
func Load() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
}

// FuncMap returns the helpers available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"score":    formatNullDecimal,
		"fixed":    formatDecimal,
		"deref":    deref,
		"date":     formatDate,
		"datetime": formatDateTime,
		"initials": initials,
		"truncate": truncate,
	}
}

func formatNullDecimal(value decimal.NullDecimal) string {
	if !value.Valid {
		return placeholder
	}
	return value.Decimal.StringFixed(2)
}

func formatDecimal(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func deref(value *string) string {
	if value == nil || *value == "" {
		return placeholder
	}
	return *value
}

func formatDate(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return placeholder
		}
		return v.Format("Jan 2, 2006")
	case *time.Time:
		if v == nil || v.IsZero() {
			return placeholder
		}
		return v.Format("Jan 2, 2006")
	default:
		return placeholder
	}
}

func formatDateTime(value time.Time) string {
	if value.IsZero() {
		return placeholder
	}
	return value.Format("Jan 2, 2006 15:04")
}

func initials(first, last, username string) string {
	var b strings.Builder
	for _, part := range []string{first, last} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	if b.Len() == 0 && username != "" {
		return strings.ToUpper(string([]rune(username)[0]))
	}
	return b.String()
}

func truncate(value string, max int) string {
	r := []rune(value)
	if len(r) <= max {
		return value
	}
	return string(r[:max]) + "..."
}

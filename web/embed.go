// Package web embeds the server-rendered page templates.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page together with the shared partials.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(TemplateFuncs()).ParseFS(templateFS, "templates/*.html")
}

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":     formatTime,
		"formatEmission": formatEmission,
		"truncate":       truncate,
		"pluralize":      pluralize,
		"toJSON":         toJSON,
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func formatEmission(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return strings.TrimSpace(string(runes[:length])) + "…"
}

func pluralize(count int64, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// toJSON marshals v for use inside a <script> block. html/template escapes
// the result for the JS context.
func toJSON(v any) (template.JS, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}

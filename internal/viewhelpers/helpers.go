// internal/viewhelpers/helpers.go
//
// Template helpers registered on every view set, so templates can call:
//
//	{{ fieldError .FormErrors "email" }}
//	{{ if formError .FormErrors }}…{{ end }}
//	{{ dict "k" 1 "k2" "v" }}
//	{{ if isDev .Env }}…{{ end }}
package viewhelpers

import (
	"html/template"
	"strings"

	"github.com/yanizio/campus/internal/core"
)

// FuncMap returns the helper set.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict":       dict,
		"fieldError": fieldError,
		"formError":  formError,
		"isDev":      func(env string) bool { return strings.Contains(env, "dev") },
		"lower":      strings.ToLower,
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// fieldError returns the first message recorded for field, or "".
func fieldError(errs []core.FieldError, field string) string {
	for _, e := range errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// formError returns the first form-level message (empty Field), or "".
func formError(errs []core.FieldError) string {
	return fieldError(errs, "")
}

package messages

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][\w.]*)\s*\}\}`)

// Interpolate replaces {{name}} placeholders with vars. Unknown names become empty.
func Interpolate(text string, vars map[string]string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

// Resolver resolves text keys with table, then fallback, then default precedence.
type Resolver struct {
	table    Table
	fallback Table
}

// NewResolver creates a resolver. Either table may be nil.
func NewResolver(table, fallback Table) *Resolver {
	return &Resolver{table: table, fallback: fallback}
}

// WithDefaults returns a resolver that consults extra after the primary table and before the
// fallback table.
func (r *Resolver) WithDefaults(extra Table) *Resolver {
	if len(extra) == 0 {
		return r
	}
	return &Resolver{table: r.table, fallback: r.fallback.Merge(extra)}
}

// Resolve returns the interpolated text for key. When neither table knows the key, def is
// used; when def is empty as well, the key itself is returned.
func (r *Resolver) Resolve(key, def string, vars map[string]string) string {
	text, ok := r.table.Lookup(key)
	if !ok {
		text, ok = r.fallback.Lookup(key)
	}
	if !ok {
		text = def
	}
	if text == "" {
		text = key
	}
	return Interpolate(text, vars)
}

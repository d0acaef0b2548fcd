// Package template renders notification messages. It supports {{field}}
// placeholders and a single-level {{<comparison> ? a : b}} conditional.
package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	conditionalRe = regexp.MustCompile(`^([^?]*)\?([^:]*):(.*)$`)
)

// Renderer renders templates, logging conditional evaluation failures.
type Renderer struct {
	log *slog.Logger
}

func NewRenderer(log *slog.Logger) *Renderer {
	return &Renderer{log: log}
}

// Render substitutes known {{key}} placeholders and resolves conditionals
// in a single pass over tmpl. Substituted values are never rescanned.
// Placeholders for unknown keys are left untouched. A conditional that
// cannot be evaluated renders as "".
func (r *Renderer) Render(tmpl string, data map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		inner := match[2 : len(match)-2]

		if m := conditionalRe.FindStringSubmatch(inner); m != nil {
			return r.conditional(m, data)
		}

		if v, ok := data[strings.TrimSpace(inner)]; ok {
			return stringify(v)
		}
		return match
	})
}

func (r *Renderer) conditional(m []string, data map[string]any) string {
	ok, err := EvalCondition(m[1], data)
	if err != nil {
		if r.log != nil {
			r.log.Warn("template conditional failed",
				slog.String("expr", strings.TrimSpace(m[1])),
				slog.String("error", err.Error()))
		}
		return ""
	}
	if ok {
		return unquote(m[2])
	}
	return unquote(m[3])
}

// Render is a convenience wrapper with no logging.
func Render(tmpl string, data map[string]any) string {
	return (&Renderer{}).Render(tmpl, data)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case decimal.Decimal:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

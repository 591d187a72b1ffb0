// Package web holds the HTML templates of the storefront, the report and the
// admin screens. They are embedded in the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"pedidos/internal/infra"
	"pedidos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var archivos embed.FS

// Templates parses every page with the helper functions they use. Dates are
// shown in loc.
func Templates(loc *time.Location) (*template.Template, error) {
	if loc == nil {
		loc = time.UTC
	}
	return template.New("").Funcs(Funcs(loc)).ParseFS(archivos, "templates/*.html")
}

// Funcs is the FuncMap shared by all templates.
func Funcs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"media": infra.URL,
		"fechaHora": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("02/01/2006 15:04")
		},
		"fecha": func(d *datatypes.Date) string {
			if d == nil {
				return "-"
			}
			return time.Time(*d).Format("02/01/2006")
		},
		"pesos": func(n int) string {
			return "$" + miles(n)
		},
		"porcentaje": func(d decimal.Decimal) string {
			return d.StringFixed(1) + "%"
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"estadoPedido": func(e model.EstadoPedido) string { return e.Etiqueta() },
		"estadoPago":   func(e model.EstadoPago) string { return e.Etiqueta() },
		"plataforma":   func(p model.Plataforma) string { return p.Etiqueta() },
		"lineas": func(s string) []string {
			return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
		},
		"rango": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
}

// miles formats n with dot thousand separators (12.500).
func miles(n int) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

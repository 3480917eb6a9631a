package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/wrale/wrale-trips/internal/price"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages holds one template set per page, each combined with the layout
type pages struct {
	sets map[string]*template.Template
}

func mustLoadPages(f price.Formatter) *pages {
	p, err := loadPages(f)
	if err != nil {
		panic(err)
	}
	return p
}

func loadPages(f price.Formatter) (*pages, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
		"coord": func(v *float64) string {
			if v == nil {
				return ""
			}
			return strconv.FormatFloat(*v, 'f', -1, 64)
		},
		"add": func(a, b int) int { return a + b },
		"currencySymbol": func() string { return f.Symbol },
	}

	p := &pages{sets: make(map[string]*template.Template)}
	for _, name := range []string{"list", "detail", "create", "error"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("error parsing %s template: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

func (p *pages) execute(w io.Writer, name string, data interface{}) error {
	t, ok := p.sets[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

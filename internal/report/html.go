package report

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"ticket-dash/internal/stats"
	"ticket-dash/internal/ticket"
)

//go:embed assets/dashboard.html.tmpl assets/dashboard.css assets/dashboard.js
var assetsFS embed.FS

const barChartRows = 12

type inlineAssets struct {
	css template.CSS
	js  template.JS
}

// loadAssets minifies the embedded stylesheet and script once per process.
var loadAssets = sync.OnceValues(func() (inlineAssets, error) {
	css, err := minify("assets/dashboard.css", api.LoaderCSS)
	if err != nil {
		return inlineAssets{}, err
	}
	js, err := minify("assets/dashboard.js", api.LoaderJS)
	if err != nil {
		return inlineAssets{}, err
	}
	return inlineAssets{css: template.CSS(css), js: template.JS(js)}, nil
})

func minify(name string, loader api.Loader) (string, error) {
	src, err := assetsFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", fmt.Errorf("failed to minify %s: %s", name, strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

var dashboardTemplate = template.Must(template.New("dashboard.html.tmpl").Funcs(template.FuncMap{
	"days": dayValue,
	"pct":  pct,
	"num":  number,
	"bars": bars,
	"sn":   func(d ticket.Dialect) bool { return d == ticket.ServiceNow },
	"cell": func(t ticket.Ticket, h string) string { return t.Raw[h] },
	"dict": dict,
	"shown": func(groups []stats.GroupStats) bool {
		return len(groups) > 1 || (len(groups) == 1 && groups[0].Key != "None")
	},
}).ParseFS(assetsFS, "assets/dashboard.html.tmpl"))

// dict builds the argument map of a nested template from key/value pairs.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value int
	Width float64
}

// bars scales counts for a CSS bar chart, keeping the largest entries.
func bars(counts []stats.Count) []Bar {
	if len(counts) > barChartRows {
		counts = counts[:barChartRows]
	}
	top := 0
	for _, c := range counts {
		top = max(top, c.Count)
	}
	out := make([]Bar, 0, len(counts))
	for _, c := range counts {
		w := 0.0
		if top > 0 {
			w = float64(c.Count) / float64(top) * 100
		}
		out = append(out, Bar{Label: c.Key, Value: c.Count, Width: w})
	}
	return out
}

type htmlView struct {
	Document
	Summary stats.Summary
	Ages    []stats.Count
	Trend   []stats.MonthPoint
	CSS     template.CSS
	JS      template.JS
}

// RenderHTML writes a self-contained HTML dashboard with inline, minified CSS and JS.
func RenderHTML(w io.Writer, doc Document) error {
	if doc.Bundle == nil {
		return errors.New("report: document has no metrics bundle")
	}
	assets, err := loadAssets()
	if err != nil {
		return err
	}

	ages := make([]stats.Count, 0, len(doc.Bundle.AgeHistogram))
	for _, b := range doc.Bundle.AgeHistogram {
		ages = append(ages, stats.Count{Key: b.Label, Count: b.Count})
	}

	view := htmlView{
		Document: doc,
		Summary:  doc.Bundle.Summary,
		Ages:     ages,
		Trend:    doc.Bundle.Trend,
		CSS:      assets.css,
		JS:       assets.js,
	}
	if err := dashboardTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

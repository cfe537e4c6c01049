package report

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/samber/lo"

	"ticket-dash/internal/stats"
	"ticket-dash/internal/ticket"
)

// Format selects the renderer of a report.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts a format name; "md" is short for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q (want html, markdown or json)", ErrUnknownFormat, s)
}

// Document is everything a renderer consumes. Renderers only read it.
type Document struct {
	Title      string
	SourceFile string
	Dialect    ticket.Dialect
	Bundle     *stats.Bundle
	Tickets    []ticket.Ticket
	// Headers orders the columns of the full ticket table.
	Headers   []string
	Rejected  int
	BlankRows int
}

var serviceNowPrefixes = map[string]string{
	"INC":    "Incident",
	"CHG":    "Change",
	"REQ":    "Request",
	"PRB":    "Problem",
	"RITM":   "Request Item",
	"TASK":   "Task",
	"SCTASK": "Catalog Task",
}

var keyPrefix = regexp.MustCompile(`^([A-Z]+)`)

// AutoTitle picks the report title. An explicit title always wins. Otherwise
// ServiceNow reports are named after the most common record prefix (INC ->
// "Incident Dashboard") and Jira reports after their project keys.
func AutoTitle(user string, d ticket.Dialect, tickets []ticket.Ticket) string {
	if strings.TrimSpace(user) != "" {
		return user
	}
	fallback := d.DisplayName() + " Dashboard"
	if len(tickets) == 0 {
		return fallback
	}

	if d == ticket.ServiceNow {
		counts := make(map[string]int)
		for _, t := range tickets {
			if m := keyPrefix.FindStringSubmatch(t.Key); m != nil {
				counts[m[1]]++
			}
		}
		if len(counts) == 0 {
			return fallback
		}
		top := slices.MaxFunc(lo.Keys(counts), func(a, b string) int {
			if c := cmp.Compare(counts[a], counts[b]); c != 0 {
				return c
			}
			return cmp.Compare(b, a)
		})
		return cmp.Or(serviceNowPrefixes[top], top) + " Dashboard"
	}

	projects := lo.Uniq(lo.FilterMap(tickets, func(t ticket.Ticket, _ int) (string, bool) {
		if p := t.ProjectKey(); p != "" {
			return p, true
		}
		return t.Project, t.Project != ""
	}))
	if len(projects) == 0 {
		return fallback
	}
	slices.Sort(projects)
	return strings.Join(projects, ", ") + " Dashboard"
}

// Render writes the document in the given format.
func Render(w io.Writer, f Format, doc Document) error {
	if doc.Bundle == nil {
		return errors.New("report: document has no metrics bundle")
	}
	switch f {
	case FormatHTML:
		return RenderHTML(w, doc)
	case FormatMarkdown:
		return RenderMarkdown(w, doc)
	case FormatJSON:
		return RenderJSON(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile renders the document and replaces path atomically, so a failed
// run never leaves a half written report behind.
func WriteFile(path string, f Format, doc Document) error {
	var buf bytes.Buffer
	if err := Render(&buf, f, doc); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"ticket-dash/internal/stats"
	"ticket-dash/internal/ticket"
)

// jsonReport is the machine readable report.
type jsonReport struct {
	Title      string          `json:"title"`
	SourceFile string          `json:"source_file,omitempty"`
	Dialect    ticket.Dialect  `json:"dialect"`
	Rejected   int             `json:"rejected_rows"`
	BlankRows  int             `json:"blank_rows"`
	Metrics    *stats.Bundle   `json:"metrics"`
	Tickets    []ticket.Ticket `json:"tickets"`
}

// RenderJSON writes the bundle and the tickets as indented JSON.
func RenderJSON(w io.Writer, doc Document) error {
	tickets := doc.Tickets
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{
		Title:      doc.Title,
		SourceFile: doc.SourceFile,
		Dialect:    doc.Dialect,
		Rejected:   doc.Rejected,
		BlankRows:  doc.BlankRows,
		Metrics:    doc.Bundle,
		Tickets:    tickets,
	}); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}

package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ticket"
)

// Rejection reasons.
const (
	ReasonMissingKey   = "missing key"
	ReasonDuplicateKey = "duplicate key"
)

// listDelimiters separate the values of multi-valued cells such as labels.
const listDelimiters = ",;"

// Rejection records a data row that did not become a ticket.
type Rejection struct {
	// Row is the 1-based record number, the header being record 1.
	Row    int    `json:"row"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// Built is the outcome of turning data rows into tickets.
type Built struct {
	Tickets    []ticket.Ticket `json:"-"`
	Rejections []Rejection     `json:"rejections"`
	// BlankRows counts rows whose cells were all empty; they are skipped, not rejected.
	BlankRows int `json:"blank_rows"`
	// InvertedResolutions counts tickets whose resolution date preceded creation;
	// the resolution date of those tickets is dropped.
	InvertedResolutions int `json:"inverted_resolutions"`
}

// Build converts rows into tickets using a column map.
//
// Rows without a key are rejected, and so are rows repeating a key already
// seen: the first occurrence wins. A row whose width differs from the header
// aborts the build with ErrMalformedCSV. A nil classifier uses the dialect's
// built-in tables.
func Build(rows [][]string, cm dialect.ColumnMap, d ticket.Dialect, cls *ticket.Classifier) (*Built, error) {
	if cls == nil {
		cls = ticket.NewClassifier(d)
	}

	out := &Built{
		Tickets:    make([]ticket.Ticket, 0, len(rows)),
		Rejections: []Rejection{},
	}
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		recNo := i + 2
		if len(row) != cm.Width() {
			return nil, fmt.Errorf("%w: record %d has %d fields, header has %d", ErrMalformedCSV, recNo, len(row), cm.Width())
		}
		if isBlank(row) {
			out.BlankRows++
			continue
		}

		r := rowReader{row: row, cm: cm}
		key := r.get(dialect.Key)
		switch {
		case key == "":
			out.Rejections = append(out.Rejections, Rejection{Row: recNo, Reason: ReasonMissingKey})
			continue
		case seen[key]:
			out.Rejections = append(out.Rejections, Rejection{Row: recNo, Key: key, Reason: ReasonDuplicateKey})
			continue
		}
		seen[key] = true

		t := buildTicket(r, d, cls)
		if t.ResolvedAt != nil && t.CreatedAt != nil && t.ResolvedAt.Before(*t.CreatedAt) {
			t.ResolvedAt = nil
			out.InvertedResolutions++
		}
		out.Tickets = append(out.Tickets, t)
	}

	return out, nil
}

func buildTicket(r rowReader, d ticket.Dialect, cls *ticket.Classifier) ticket.Ticket {
	status := r.get(dialect.Status)
	priority := r.get(dialect.Priority)

	t := ticket.Ticket{
		Key:            r.get(dialect.Key),
		Summary:        r.get(dialect.Summary),
		Status:         status,
		StatusCategory: cls.Status(status),
		Blocked:        cls.IsBlocked(status),
		Assignee:       r.get(dialect.Assignee),
		Reporter:       r.get(dialect.Reporter),
		Priority:       priority,
		PriorityLevel:  cls.Priority(priority),
		IssueType:      r.get(dialect.IssueType),
		Resolution:     r.get(dialect.Resolution),
		Project:        r.get(dialect.Project),
		Parent:         r.get(dialect.Parent),

		CreatedAt:  ticket.ParseDatePtr(r.get(dialect.Created)),
		UpdatedAt:  ticket.ParseDatePtr(r.get(dialect.Updated)),
		ResolvedAt: ticket.ParseDatePtr(r.get(dialect.Resolved)),
		DueAt:      ticket.ParseDatePtr(r.get(dialect.Due)),

		StoryPoints: parseFloat(r.get(dialect.StoryPoints)),
		Epic:        r.get(dialect.Epic),
		Sprint:      r.get(dialect.Sprint),
		Components:  r.list(dialect.Components),
		Labels:      r.list(dialect.Labels),
		FixVersions: r.list(dialect.FixVersions),

		OriginalEstimateSeconds:  ticket.ParseDurationPtr(r.get(dialect.OriginalEstimate)),
		TimeSpentSeconds:         ticket.ParseDurationPtr(r.get(dialect.TimeSpent)),
		RemainingEstimateSeconds: ticket.ParseDurationPtr(r.get(dialect.RemainingEstimate)),

		Raw: r.raw(),
	}
	t.LastCommentAt, t.CommentPreview = latestComment(r.row, r.cm.Comments)

	if d == ticket.ServiceNow {
		t.ServiceNow = ticket.ServiceNowFields{
			AssignmentGroup:         r.get(dialect.AssignmentGroup),
			Category:                r.get(dialect.Category),
			Subcategory:             r.get(dialect.Subcategory),
			ContactType:             r.get(dialect.ContactType),
			MadeSLA:                 parseBool(r.get(dialect.MadeSLA)),
			Escalation:              r.get(dialect.Escalation),
			ReassignmentCount:       parseCount(r.get(dialect.ReassignmentCount)),
			ReopenCount:             parseCount(r.get(dialect.ReopenCount)),
			Impact:                  r.get(dialect.Impact),
			Urgency:                 r.get(dialect.Urgency),
			Severity:                r.get(dialect.Severity),
			CloseNotes:              r.get(dialect.CloseNotes),
			ConfigurationItem:       r.get(dialect.ConfigurationItem),
			BusinessDurationSeconds: ticket.ParseDurationPtr(r.get(dialect.BusinessDuration)),
			ClosedAt:                ticket.ParseDatePtr(r.get(dialect.ClosedAt)),
		}
	}

	return t
}

type rowReader struct {
	row []string
	cm  dialect.ColumnMap
}

// get returns the first non-empty cell among the field's columns.
func (r rowReader) get(f dialect.Field) string {
	for _, i := range r.cm.Columns(f) {
		if v := strings.TrimSpace(r.row[i]); v != "" {
			return v
		}
	}
	return ""
}

// list splits every column of the field on listDelimiters, dropping empty and repeated entries.
func (r rowReader) list(f dialect.Field) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, i := range r.cm.Columns(f) {
		for _, item := range strings.FieldsFunc(r.row[i], func(c rune) bool {
			return strings.ContainsRune(listDelimiters, c)
		}) {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func (r rowReader) raw() map[string]string {
	m := make(map[string]string, len(r.row))
	for i, h := range r.cm.Headers {
		if m[h] == "" {
			m[h] = r.row[i]
		}
	}
	return m
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseCount(s string) *int {
	f := parseFloat(s)
	if f == nil || *f < 0 || *f > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

func parseBool(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		v = true
	case "false", "0", "no", "n":
		v = false
	default:
		return nil
	}
	return &v
}

package engine

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"ticket-dash/internal/ingest"
	"ticket-dash/internal/ticket"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Dialect: ticket.Jira, Scenario: "chaos", Count: 30, Now: now, Seed: 7}
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("the same seed must produce the same export")
	}
	if len(a.Rows) != 30 {
		t.Errorf("got %d rows, want 30", len(a.Rows))
	}
	for i, row := range a.Rows {
		if len(row) != len(a.Header) {
			t.Fatalf("row %d has %d cells, header has %d", i, len(row), len(a.Header))
		}
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeneratorConfig
	}{
		{"UnknownDialect", GeneratorConfig{Dialect: "github", Count: 5}},
		{"ZeroCount", GeneratorConfig{Dialect: ticket.Jira}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// The generated files must round-trip through the importer: detected as their
// own dialect, no rejected rows and both open and resolved tickets.
func TestGenerate_ImportsCleanly(t *testing.T) {
	scenarios := []struct {
		dialect      ticket.Dialect
		scenario     string
		distribution string
	}{
		{ticket.Jira, "mild", "uniform"},
		{ticket.Jira, "drift", "weibull"},
		{ticket.ServiceNow, "chaos", "uniform"},
		{ticket.ServiceNow, "mild", "weibull"},
	}
	for _, sc := range scenarios {
		t.Run(string(sc.dialect)+"_"+sc.scenario+"_"+sc.distribution, func(t *testing.T) {
			export, err := Generate(GeneratorConfig{
				Dialect: sc.dialect, Scenario: sc.scenario, Distribution: sc.distribution,
				Count: 80, Now: now, Seed: 42,
			})
			if err != nil {
				t.Fatal(err)
			}
			path := filepath.Join(t.TempDir(), "nested", "export.csv")
			if err := Save(path, export); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			res, err := ingest.Parse(f, ingest.Options{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if res.Dialect != sc.dialect || res.Detection.Ambiguous {
				t.Errorf("detection = %+v", res.Detection)
			}
			if len(res.Tickets) != 80 || res.Rejected() != 0 {
				t.Fatalf("tickets = %d, rejected = %d", len(res.Tickets), res.Rejected())
			}

			open, resolved, commented := 0, 0, 0
			for _, tk := range res.Tickets {
				if tk.CreatedAt == nil {
					t.Fatalf("%s has no creation date", tk.Key)
				}
				if tk.IsOpen() {
					open++
				}
				if tk.ResolvedAt != nil {
					resolved++
				}
				if tk.LastCommentAt != nil {
					commented++
				}
			}
			if open == 0 || resolved == 0 {
				t.Errorf("open = %d, resolved = %d; want both", open, resolved)
			}
			if commented != 80 {
				t.Errorf("%d tickets with a dated comment, want 80", commented)
			}

			first := res.Tickets[0]
			switch sc.dialect {
			case ticket.Jira:
				if first.StoryPoints == nil || first.OriginalEstimateSeconds == nil || first.Epic == "" {
					t.Errorf("jira fields missing: %+v", first)
				}
			case ticket.ServiceNow:
				if first.ServiceNow.AssignmentGroup == "" || first.ServiceNow.ReassignmentCount == nil {
					t.Errorf("servicenow fields missing: %+v", first.ServiceNow)
				}
			}
		})
	}
}

func TestSave_WritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	e := &Export{Header: []string{"Number", "Work notes"}, Rows: [][]string{{"INC1", "line one\nline, two"}}}
	if err := Save(path, e); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(records) != 2 || records[1][1] != "line one\nline, two" {
		t.Errorf("records = %q", records)
	}
}

package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ticket"
)

func TestParse_EndToEndRows(t *testing.T) {
	csv := strings.Join([]string{
		"Issue key,Summary,Status,Issue Type,Priority,Assignee,Created,Resolved,Due Date",
		"OPS-1,Broken login,In Progress,Bug,High,alice,2024-03-01 09:00,,",
		"OPS-2,Upgrade db,Done,Task,Low,bob,2024-03-05 09:00,2024-03-10 09:00,",
		",No key here,To Do,Task,Low,bob,2024-03-05 09:00,,",
	}, "\n")

	res, err := Parse(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if res.Dialect != ticket.Jira {
		t.Errorf("Dialect = %s, want jira", res.Dialect)
	}
	if len(res.Tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(res.Tickets))
	}
	if res.Rejected() != 1 {
		t.Fatalf("Rejected = %d, want 1", res.Rejected())
	}
	if rej := res.Rejections[0]; rej.Row != 4 || rej.Reason != ReasonMissingKey {
		t.Errorf("rejection = %+v", rej)
	}

	open := res.Tickets[0]
	if open.Key != "OPS-1" || open.StatusCategory != ticket.CategoryInProgress || !open.IsOpen() {
		t.Errorf("first ticket = %+v", open)
	}
	if open.PriorityLevel != ticket.PriorityHigh {
		t.Errorf("PriorityLevel = %s", open.PriorityLevel)
	}
	if open.DueAt != nil || open.ResolvedAt != nil {
		t.Error("empty cells must stay absent")
	}

	closed := res.Tickets[1]
	if closed.IsOpen() {
		t.Error("Done ticket reported open")
	}
	if got := closed.ResolvedAt.Sub(*closed.CreatedAt); got != 5*24*time.Hour {
		t.Errorf("resolution span = %v, want 120h", got)
	}
	if closed.Raw["Summary"] != "Upgrade db" {
		t.Errorf("Raw[Summary] = %q", closed.Raw["Summary"])
	}
}

func TestParse_DuplicateKeysFirstWins(t *testing.T) {
	csv := "Issue key,Summary\nOPS-1,first\nOPS-2,other\nOPS-1,second\n"
	res, err := Parse(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Tickets) != 2 || res.Tickets[0].Summary != "first" {
		t.Fatalf("tickets = %+v", res.Tickets)
	}
	want := Rejection{Row: 4, Key: "OPS-1", Reason: ReasonDuplicateKey}
	if len(res.Rejections) != 1 || res.Rejections[0] != want {
		t.Errorf("rejections = %+v, want [%+v]", res.Rejections, want)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Empty", "", ErrEmptyInput},
		{"ShortRow", "Issue key,Summary\nOPS-1\n", ErrMalformedCSV},
		{"LongRow", "Issue key,Summary\nOPS-1,a,b\n", ErrMalformedCSV},
		{"BareQuote", "Issue key,Summary\nOPS-1,\"unterminated\n", ErrMalformedCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuild_RowWidthMismatch(t *testing.T) {
	cm := dialect.Normalize([]string{"Issue key", "Summary"}, ticket.Jira)
	_, err := Build([][]string{{"OPS-1", "ok"}, {"OPS-2"}}, cm, ticket.Jira, nil)
	if !errors.Is(err, ErrMalformedCSV) {
		t.Fatalf("err = %v, want ErrMalformedCSV", err)
	}
	if !strings.Contains(err.Error(), "record 3") {
		t.Errorf("error does not name the record: %v", err)
	}
}

func TestParse_Encodings(t *testing.T) {
	t.Run("BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Issue key,Summary\nOPS-1,café\n")...)
		res, err := Parse(bytes.NewReader(data), Options{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(res.Tickets) != 1 || res.Tickets[0].Key != "OPS-1" {
			t.Fatalf("BOM leaked into the key column: %+v", res.Tickets)
		}
	})

	t.Run("Windows1252", func(t *testing.T) {
		data := []byte("Number,Short description\nINC001,caf\xe9 \x93down\x94\n")
		res, err := Parse(bytes.NewReader(data), Options{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if got := res.Tickets[0].Summary; got != "café “down”" {
			t.Errorf("Summary = %q", got)
		}
	})
}

func TestParse_ServiceNow(t *testing.T) {
	csv := strings.Join([]string{
		"Number,Short description,State,Priority,Assigned to,Assignment group,Opened at,Resolved at,Made SLA,Reassignment count,Reopen count,Contact type,Business duration,Work notes",
		`INC0010001,VPN down,Resolved,1 - Critical,,Network,2024-02-01 08:00:00,2024-02-01 12:00:00,true,2,0,Phone,4h,"2024-02-01 11:00:00 - Jane Roe (Work notes)` + "\n" + `Restarted the concentrator"`,
		"INC0010002,Printer jam,On Hold,4 - Low,sam,Desk,2024-02-02 08:00:00,,no,1.0,,Email,,",
	}, "\n")

	res, err := Parse(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Dialect != ticket.ServiceNow || res.Detection.Ambiguous {
		t.Fatalf("detection = %+v", res.Detection)
	}

	first := res.Tickets[0]
	sn := first.ServiceNow
	if sn.AssignmentGroup != "Network" || sn.ContactType != "Phone" {
		t.Errorf("ServiceNow fields = %+v", sn)
	}
	if sn.MadeSLA == nil || !*sn.MadeSLA {
		t.Error("MadeSLA should be true")
	}
	if sn.ReassignmentCount == nil || *sn.ReassignmentCount != 2 {
		t.Errorf("ReassignmentCount = %v", sn.ReassignmentCount)
	}
	if sn.BusinessDurationSeconds == nil || *sn.BusinessDurationSeconds != 4*3600 {
		t.Errorf("BusinessDurationSeconds = %v", sn.BusinessDurationSeconds)
	}
	if first.PriorityLevel != ticket.PriorityCritical || first.StatusCategory != ticket.CategoryDone {
		t.Errorf("classification = %s / %s", first.PriorityLevel, first.StatusCategory)
	}
	if first.CommentPreview != "Restarted the concentrator" {
		t.Errorf("CommentPreview = %q", first.CommentPreview)
	}
	wantComment := time.Date(2024, 2, 1, 11, 0, 0, 0, time.UTC)
	if first.LastCommentAt == nil || !first.LastCommentAt.Equal(wantComment) {
		t.Errorf("LastCommentAt = %v", first.LastCommentAt)
	}

	second := res.Tickets[1]
	if !second.Blocked || second.ServiceNow.MadeSLA == nil || *second.ServiceNow.MadeSLA {
		t.Errorf("second ticket = %+v", second)
	}
	if second.ServiceNow.ReassignmentCount == nil || *second.ServiceNow.ReassignmentCount != 1 {
		t.Errorf("float count not accepted: %v", second.ServiceNow.ReassignmentCount)
	}
	if second.ServiceNow.ReopenCount != nil {
		t.Error("empty reopen count must stay absent")
	}
}

func TestParse_ExplicitSourceAndOverrides(t *testing.T) {
	csv := "Number,Short description,State\nINC1,x,Shipped\n"
	res, err := Parse(strings.NewReader(csv), Options{
		Source:    dialect.SourceJira,
		Overrides: ticket.Overrides{Statuses: map[string]ticket.StatusCategory{"shipped": ticket.CategoryDone}},
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Dialect != ticket.Jira || !res.Detection.Explicit {
		t.Errorf("detection = %+v", res.Detection)
	}
	// Jira aliases do not know "Number", so every row lacks a key.
	if len(res.Tickets) != 0 || res.Rejected() != 1 {
		t.Errorf("tickets = %d, rejected = %d", len(res.Tickets), res.Rejected())
	}

	res, err = Parse(strings.NewReader("Issue key,Status\nA-1,Shipped\n"), Options{
		Overrides: ticket.Overrides{Statuses: map[string]ticket.StatusCategory{"shipped": ticket.CategoryDone}},
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Tickets[0].StatusCategory != ticket.CategoryDone {
		t.Errorf("override ignored: %s", res.Tickets[0].StatusCategory)
	}
}

func TestBuild_FieldPolicies(t *testing.T) {
	header := []string{"Issue key", "Labels", "Labels", "Sprint", "Sprint", "Created", "Resolved", "Story Points", "Original Estimate", "Time Spent", "Comment", "Comment"}
	rows := [][]string{
		{"A-1", "ui, backend;;", " backend ;ops", "", "Sprint 4", "2024-03-10", "2024-03-01", "3.5", "1d 4h", "bogus", "01/Mar/24 10:00 AM;u1;older note", "05/Mar/24 4:30 PM;u2;newer note"},
		{"", "", "", "", "", "", "", "", "", "", "", ""},
	}
	cm := dialect.Normalize(header, ticket.Jira)

	got, err := Build(rows, cm, ticket.Jira, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got.BlankRows != 1 || len(got.Rejections) != 0 {
		t.Errorf("blank = %d, rejections = %+v", got.BlankRows, got.Rejections)
	}
	if got.InvertedResolutions != 1 {
		t.Errorf("InvertedResolutions = %d, want 1", got.InvertedResolutions)
	}

	tk := got.Tickets[0]
	if want := []string{"ui", "backend", "ops"}; strings.Join(tk.Labels, "|") != strings.Join(want, "|") {
		t.Errorf("Labels = %v, want %v", tk.Labels, want)
	}
	if tk.Sprint != "Sprint 4" {
		t.Errorf("Sprint = %q", tk.Sprint)
	}
	if tk.ResolvedAt != nil {
		t.Error("resolution before creation must be dropped")
	}
	if tk.StoryPoints == nil || *tk.StoryPoints != 3.5 {
		t.Errorf("StoryPoints = %v", tk.StoryPoints)
	}
	if tk.OriginalEstimateSeconds == nil || *tk.OriginalEstimateSeconds != 28*3600 {
		t.Errorf("OriginalEstimateSeconds = %v", tk.OriginalEstimateSeconds)
	}
	if tk.TimeSpentSeconds != nil {
		t.Error("unparseable duration must be absent")
	}
	if tk.CommentPreview != "newer note" {
		t.Errorf("CommentPreview = %q", tk.CommentPreview)
	}
	if len(tk.Components) != 0 || tk.Components == nil {
		t.Errorf("Components = %#v, want empty non-nil", tk.Components)
	}
	if tk.PriorityLevel != ticket.PriorityUnknown || tk.StatusCategory != ticket.CategoryOther {
		t.Errorf("missing enums should fall back: %s / %s", tk.PriorityLevel, tk.StatusCategory)
	}
	if tk.ServiceNow.MadeSLA != nil || tk.ServiceNow.AssignmentGroup != "" {
		t.Error("ServiceNow fields must stay empty for Jira rows")
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", maxCommentPreview+10)
	got := preview(long)
	if r := []rune(got); len(r) != maxCommentPreview+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview length = %d", len(r))
	}
	if preview("  a \n\t b ") != "a b" {
		t.Error("whitespace should collapse")
	}
}

package dialect

import (
	"errors"
	"slices"
	"testing"

	"ticket-dash/internal/ticket"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		want      ticket.Dialect
		ambiguous bool
	}{
		{"JiraIndicators", []string{"Issue key", "Summary", "Sprint", "Epic Link"}, ticket.Jira, false},
		{"ServiceNowIndicators", []string{"Number", "Opened at", "Assignment group", "State"}, ticket.ServiceNow, false},
		{"ServiceNowSnakeCase", []string{"number", "opened_at", "made_sla", "sys_class_name"}, ticket.ServiceNow, false},
		{"NoIndicatorsDefaultsToJira", []string{"Foo", "Bar"}, ticket.Jira, true},
		{"EmptyHeader", nil, ticket.Jira, true},
		{"IssueKeyOutweighsNumber", []string{"Issue key", "Number"}, ticket.Jira, false},
		{"TieDefaultsToJira", []string{"Sprint", "Number"}, ticket.Jira, true},
		{"CustomFieldsCount", []string{"Summary", "Custom field (Team)", "Custom field (Rank)", "Number"}, ticket.Jira, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.header)
			if got.Dialect != tt.want {
				t.Errorf("Detect() dialect = %s, want %s (scores %v)", got.Dialect, tt.want, got.Scores)
			}
			if got.Ambiguous != tt.ambiguous {
				t.Errorf("Detect() ambiguous = %v, want %v (scores %v)", got.Ambiguous, tt.ambiguous, got.Scores)
			}
			if got.Explicit {
				t.Error("auto detection must not be flagged explicit")
			}
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	header := []string{"Issue key", "Number", "Opened at", "Sprint"}
	first := Detect(header)
	for i := 0; i < 50; i++ {
		again := Detect(header)
		if again.Dialect != first.Dialect || again.Ambiguous != first.Ambiguous {
			t.Fatalf("run %d: got %s/%v, first run %s/%v", i, again.Dialect, again.Ambiguous, first.Dialect, first.Ambiguous)
		}
		if !slices.Equal(again.Matched[ticket.Jira], first.Matched[ticket.Jira]) {
			t.Fatalf("run %d: matched indicators differ", i)
		}
	}
	// issue key (3) + sprint (1) against number (1) + opened at (2)
	if first.Dialect != ticket.Jira || first.Scores[ticket.Jira] != 4 || first.Scores[ticket.ServiceNow] != 3 {
		t.Errorf("unexpected scores %v", first.Scores)
	}
}

func TestChoose(t *testing.T) {
	header := []string{"Issue key", "Sprint"}
	det := Choose(SourceServiceNow, header)
	if det.Dialect != ticket.ServiceNow || !det.Explicit || det.Scores != nil {
		t.Errorf("explicit source must bypass detection, got %+v", det)
	}
	if det := Choose(SourceAuto, header); det.Dialect != ticket.Jira || det.Explicit {
		t.Errorf("auto should detect Jira, got %+v", det)
	}
}

func TestParseSource(t *testing.T) {
	for in, want := range map[string]Source{"": SourceAuto, "AUTO": SourceAuto, "jira": SourceJira, " ServiceNow ": SourceServiceNow} {
		got, err := ParseSource(in)
		if err != nil || got != want {
			t.Errorf("ParseSource(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSource("zendesk"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestNormalize_CaseAndPunctuation(t *testing.T) {
	for _, h := range []string{"ISSUE KEY", "issue_key", "Issue key", " Issue-Key "} {
		cm := Normalize([]string{"Summary", h}, ticket.Jira)
		idx, ok := cm.Index(Key)
		if !ok || idx != 1 {
			t.Errorf("header %q: Index(Key) = %d, %v; want 1, true", h, idx, ok)
		}
	}

	cm := Normalize([]string{"Component/s", "Fix Version/s"}, ticket.Jira)
	if idx, ok := cm.Index(Components); !ok || idx != 0 {
		t.Errorf("Component/s should map to components, got %d, %v", idx, ok)
	}
	if idx, ok := cm.Index(FixVersions); !ok || idx != 1 {
		t.Errorf("Fix Version/s should map to fix_versions, got %d, %v", idx, ok)
	}
}

func TestNormalize_AliasPrecedence(t *testing.T) {
	// "issue key" precedes "key" in the alias list, regardless of column order.
	cm := Normalize([]string{"Key", "Issue key"}, ticket.Jira)
	if idx, _ := cm.Index(Key); idx != 1 {
		t.Errorf("Index(Key) = %d, want 1", idx)
	}
	if cols := cm.Columns(Key); !slices.Equal(cols, []int{1}) {
		t.Errorf("lower-precedence alias columns must not be merged, got %v", cols)
	}
}

func TestNormalize_DuplicatesAndCustomFields(t *testing.T) {
	header := []string{"Issue key", "Sprint", "Sprint", "Custom field (Story Points)", "Labels", "Labels"}
	cm := Normalize(header, ticket.Jira)

	if cols := cm.Columns(Sprint); !slices.Equal(cols, []int{1, 2}) {
		t.Errorf("Columns(Sprint) = %v, want [1 2]", cols)
	}
	if idx, ok := cm.Index(StoryPoints); !ok || idx != 3 {
		t.Errorf("custom field wrapper not unwrapped: %d, %v", idx, ok)
	}
	if cols := cm.Columns(Labels); !slices.Equal(cols, []int{4, 5}) {
		t.Errorf("Columns(Labels) = %v", cols)
	}
	if cm.Width() != len(header) {
		t.Errorf("Width = %d", cm.Width())
	}
}

func TestNormalize_MissingFieldsAreAbsent(t *testing.T) {
	cm := Normalize([]string{"Issue key", "Summary"}, ticket.Jira)
	if _, ok := cm.Index(Due); ok {
		t.Error("due date should be absent")
	}
	if !slices.Contains(cm.Unmapped(ticket.Jira), Due) {
		t.Error("Unmapped should list due_at")
	}
	if got := cm.Mapped(ticket.Jira); !slices.Equal(got, []Field{Key, Summary}) {
		t.Errorf("Mapped = %v", got)
	}
}

func TestNormalize_CommentColumns(t *testing.T) {
	header := []string{"Issue key", "Comment", "Comment", "Last Comment Date", "Summary"}
	cm := Normalize(header, ticket.Jira)
	if !slices.Equal(cm.Comments, []int{1, 2, 3}) {
		t.Errorf("Jira comment columns = %v", cm.Comments)
	}

	sn := Normalize([]string{"Number", "Work notes", "Additional comments", "actions_taken", "State"}, ticket.ServiceNow)
	if !slices.Equal(sn.Comments, []int{1, 2, 3}) {
		t.Errorf("ServiceNow comment columns = %v", sn.Comments)
	}

	// Work notes are only comment columns for ServiceNow.
	j := Normalize([]string{"Issue key", "Work notes"}, ticket.Jira)
	if len(j.Comments) != 0 {
		t.Errorf("unexpected Jira comment columns %v", j.Comments)
	}
}

func TestNormalize_ServiceNowFields(t *testing.T) {
	header := []string{"number", "short_description", "state", "assigned_to", "opened_at", "resolved_at", "closed_at", "made_sla", "assignment_group"}
	cm := Normalize(header, ticket.ServiceNow)

	want := map[Field]int{Key: 0, Summary: 1, Status: 2, Assignee: 3, Created: 4, Resolved: 5, ClosedAt: 6, MadeSLA: 7, AssignmentGroup: 8}
	for f, idx := range want {
		if got, ok := cm.Index(f); !ok || got != idx {
			t.Errorf("Index(%s) = %d, %v; want %d", f, got, ok, idx)
		}
	}
}

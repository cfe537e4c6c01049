package ticket

import (
	"strings"
	"time"
)

// Dialect identifies the export schema a CSV file was produced by.
type Dialect string

const (
	Jira       Dialect = "jira"
	ServiceNow Dialect = "servicenow"
)

// DisplayName returns the human readable product name of the dialect.
func (d Dialect) DisplayName() string {
	switch d {
	case ServiceNow:
		return "ServiceNow"
	default:
		return "Jira"
	}
}

// StatusCategory is the coarse lifecycle bucket a raw status name is classified into.
type StatusCategory string

const (
	CategoryOpen       StatusCategory = "Open"
	CategoryInProgress StatusCategory = "InProgress"
	CategoryDone       StatusCategory = "Done"
	CategoryOther      StatusCategory = "Other"
)

// PriorityLevel is the normalized priority scale shared by all dialects.
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "Critical"
	PriorityHigh     PriorityLevel = "High"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityLow      PriorityLevel = "Low"
	PriorityUnknown  PriorityLevel = "Unknown"
)

// ServiceNowFields groups the attributes only ServiceNow exports carry.
// The struct is always present on a Ticket but stays zero for Jira rows.
type ServiceNowFields struct {
	AssignmentGroup         string     `json:"assignment_group,omitempty"`
	Category                string     `json:"category,omitempty"`
	Subcategory             string     `json:"subcategory,omitempty"`
	ContactType             string     `json:"contact_type,omitempty"`
	MadeSLA                 *bool      `json:"made_sla,omitempty"`
	Escalation              string     `json:"escalation,omitempty"`
	ReassignmentCount       *int       `json:"reassignment_count,omitempty"`
	ReopenCount             *int       `json:"reopen_count,omitempty"`
	Impact                  string     `json:"impact,omitempty"`
	Urgency                 string     `json:"urgency,omitempty"`
	Severity                string     `json:"severity,omitempty"`
	CloseNotes              string     `json:"close_notes,omitempty"`
	ConfigurationItem       string     `json:"configuration_item,omitempty"`
	BusinessDurationSeconds *int64     `json:"business_duration_seconds,omitempty"`
	ClosedAt                *time.Time `json:"closed_at,omitempty"`
}

// Ticket is the canonical, dialect-independent record built from one CSV row.
type Ticket struct {
	Key            string         `json:"key"`
	Summary        string         `json:"summary,omitempty"`
	Status         string         `json:"status,omitempty"`
	StatusCategory StatusCategory `json:"status_category"`
	Blocked        bool           `json:"blocked,omitempty"`
	Assignee       string         `json:"assignee,omitempty"`
	Reporter       string         `json:"reporter,omitempty"`
	Priority       string         `json:"priority,omitempty"`
	PriorityLevel  PriorityLevel  `json:"priority_level"`
	IssueType      string         `json:"issue_type,omitempty"`
	Resolution     string         `json:"resolution,omitempty"`
	Project        string         `json:"project,omitempty"`
	Parent         string         `json:"parent,omitempty"`

	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	LastCommentAt *time.Time `json:"last_comment_at,omitempty"`

	CommentPreview string   `json:"comment_preview,omitempty"`
	StoryPoints    *float64 `json:"story_points,omitempty"`
	Epic           string   `json:"epic,omitempty"`
	Sprint         string   `json:"sprint,omitempty"`
	Components     []string `json:"components"`
	Labels         []string `json:"labels"`
	FixVersions    []string `json:"fix_versions"`

	OriginalEstimateSeconds  *int64 `json:"original_estimate_seconds,omitempty"`
	TimeSpentSeconds         *int64 `json:"time_spent_seconds,omitempty"`
	RemainingEstimateSeconds *int64 `json:"remaining_estimate_seconds,omitempty"`

	ServiceNow ServiceNowFields `json:"servicenow"`

	// Raw keeps every source cell by header name for the full ticket table.
	Raw map[string]string `json:"raw,omitempty"`
}

// IsOpen reports whether the ticket still needs work. Openness follows the
// status classification only; a resolution date on its own does not close a ticket.
func (t Ticket) IsOpen() bool {
	return t.StatusCategory != CategoryDone
}

// LastActivity returns the later of the update timestamp and the latest comment.
func (t Ticket) LastActivity() *time.Time {
	switch {
	case t.UpdatedAt == nil:
		return t.LastCommentAt
	case t.LastCommentAt == nil:
		return t.UpdatedAt
	case t.LastCommentAt.After(*t.UpdatedAt):
		return t.LastCommentAt
	default:
		return t.UpdatedAt
	}
}

// ProjectKey extracts the project prefix of a Jira style key (PROJ-123 -> PROJ).
func (t Ticket) ProjectKey() string {
	if i := strings.IndexByte(t.Key, '-'); i > 0 {
		return t.Key[:i]
	}
	return ""
}

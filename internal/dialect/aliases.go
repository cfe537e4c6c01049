package dialect

import "ticket-dash/internal/ticket"

// Field is a canonical ticket attribute, independent of the source dialect.
type Field string

const (
	Key               Field = "key"
	Summary           Field = "summary"
	Status            Field = "status"
	Assignee          Field = "assignee"
	Reporter          Field = "reporter"
	Priority          Field = "priority"
	IssueType         Field = "issue_type"
	Created           Field = "created_at"
	Updated           Field = "updated_at"
	Resolved          Field = "resolved_at"
	Due               Field = "due_at"
	Labels            Field = "labels"
	Components        Field = "components"
	FixVersions       Field = "fix_versions"
	Resolution        Field = "resolution"
	StoryPoints       Field = "story_points"
	OriginalEstimate  Field = "original_estimate"
	TimeSpent         Field = "time_spent"
	RemainingEstimate Field = "remaining_estimate"
	Epic              Field = "epic"
	Sprint            Field = "sprint"
	Project           Field = "project"
	Parent            Field = "parent"

	Category          Field = "category"
	Subcategory       Field = "subcategory"
	AssignmentGroup   Field = "assignment_group"
	ContactType       Field = "contact_type"
	Impact            Field = "impact"
	Urgency           Field = "urgency"
	MadeSLA           Field = "made_sla"
	BusinessDuration  Field = "business_duration"
	Escalation        Field = "escalation"
	ReassignmentCount Field = "reassignment_count"
	ReopenCount       Field = "reopen_count"
	CloseNotes        Field = "close_notes"
	ClosedAt          Field = "closed_at"
	Severity          Field = "severity"
	ConfigurationItem Field = "configuration_item"
)

// aliasEntry lists the recognised header spellings of one field in precedence order.
type aliasEntry struct {
	field   Field
	aliases []string
}

var jiraAliases = []aliasEntry{
	{Key, []string{"issue key", "key", "issue_key", "issuekey"}},
	{Summary, []string{"summary", "title", "description_short"}},
	{Status, []string{"status", "issue status", "status name"}},
	{Assignee, []string{"assignee", "assigned to", "assignee name"}},
	{Reporter, []string{"reporter", "reporter name", "created by"}},
	{Priority, []string{"priority", "priority name"}},
	{IssueType, []string{"issue type", "issuetype", "type", "issue_type"}},
	{Created, []string{"created", "date created", "creation date", "created date"}},
	{Updated, []string{"updated", "date updated", "last updated", "updated date"}},
	{Resolved, []string{"resolved", "date resolved", "resolution date", "resolved date"}},
	{Due, []string{"due date", "due", "duedate", "due_date"}},
	{Labels, []string{"labels", "label"}},
	{Components, []string{"components", "component", "component/s"}},
	{FixVersions, []string{"fix version/s", "fix versions", "fix version", "fixversions"}},
	{Resolution, []string{"resolution", "resolution name"}},
	{StoryPoints, []string{"story points", "story_points", "storypoints", "story point estimate"}},
	{OriginalEstimate, []string{"original estimate", "original_estimate", "time original estimate", "σ original estimate"}},
	{TimeSpent, []string{"time spent", "time_spent", "timespent"}},
	{RemainingEstimate, []string{"remaining estimate", "remaining_estimate", "time remaining estimate"}},
	{Epic, []string{"epic link", "epic_link", "epic name", "epic"}},
	{Sprint, []string{"sprint", "sprint name"}},
	{Project, []string{"project", "project key", "project name"}},
	{Parent, []string{"parent", "parent key", "parent id"}},
}

var serviceNowAliases = []aliasEntry{
	{Key, []string{"number", "task number", "ticket number"}},
	{Summary, []string{"short description", "description"}},
	{Status, []string{"state", "status", "incident state"}},
	{Assignee, []string{"assigned to", "assignee"}},
	{Reporter, []string{"caller_id", "caller", "opened by", "requested by"}},
	{Priority, []string{"priority"}},
	{IssueType, []string{"sys_class_name", "type", "task type"}},
	{Created, []string{"opened at", "sys_created_on", "created"}},
	{Updated, []string{"updated at", "sys_updated_on", "updated"}},
	{Resolved, []string{"resolved at", "closed at"}},
	{Due, []string{"due date", "expected start"}},
	{Resolution, []string{"close code", "resolution code"}},
	{TimeSpent, []string{"time worked"}},
	{Project, []string{"company", "department", "service_offering", "business_service"}},
	{Parent, []string{"parent", "parent incident"}},
	{Category, []string{"category"}},
	{Subcategory, []string{"subcategory", "sub_category"}},
	{AssignmentGroup, []string{"assignment group"}},
	{ContactType, []string{"contact type"}},
	{Impact, []string{"impact"}},
	{Urgency, []string{"urgency"}},
	{MadeSLA, []string{"made sla"}},
	{BusinessDuration, []string{"business duration", "business_stc", "calendar_duration", "calendar_stc"}},
	{Escalation, []string{"escalation"}},
	{ReassignmentCount, []string{"reassignment count"}},
	{ReopenCount, []string{"reopen count", "u_reopen_count_multiplied"}},
	{CloseNotes, []string{"close notes", "resolution notes"}},
	{ClosedAt, []string{"closed at"}},
	{Severity, []string{"severity"}},
	{ConfigurationItem, []string{"configuration item", "cmdb_ci", "ci"}},
}

func aliasesFor(d ticket.Dialect) []aliasEntry {
	if d == ticket.ServiceNow {
		return serviceNowAliases
	}
	return jiraAliases
}

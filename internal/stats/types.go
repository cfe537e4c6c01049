package stats

// Bundle is the complete set of aggregates computed from one ticket set.
// Values that have no data (an average over zero tickets) are null, never zero.
type Bundle struct {
	AsOf      string  `json:"as_of"`
	StaleDays int     `json:"stale_days"`
	Summary   Summary `json:"summary"`

	StatusCounts         []Count `json:"status_counts"`
	StatusCategoryCounts []Count `json:"status_category_counts"`
	PriorityCounts       []Count `json:"priority_counts"`
	PriorityLevelCounts  []Count `json:"priority_level_counts"`
	TypeCounts           []Count `json:"type_counts"`
	FixVersionCounts     []Count `json:"fix_version_counts"`
	// Workload counts open tickets per assignee.
	Workload []Count `json:"workload"`

	Assignees        []GroupStats `json:"assignees"`
	Reporters        []GroupStats `json:"reporters"`
	Epics            []GroupStats `json:"epics"`
	Sprints          []GroupStats `json:"sprints"`
	Components       []GroupStats `json:"components"`
	Labels           []GroupStats `json:"labels"`
	AssignmentGroups []GroupStats `json:"assignment_groups"`
	Categories       []GroupStats `json:"categories"`

	Trend        []MonthPoint `json:"trend"`
	AgeHistogram []AgeBucket  `json:"age_histogram"`

	ResolutionByType     []ResolutionStat `json:"resolution_by_type"`
	ResolutionByPriority []ResolutionStat `json:"resolution_by_priority"`

	OldestOpen []AgedTicket `json:"oldest_open"`
	Staleness  []StaleRow   `json:"staleness"`
	Flow       []FlowEdge   `json:"flow"`

	Estimation  Estimation  `json:"estimation"`
	SLA         SLA         `json:"sla"`
	ServiceDesk ServiceDesk `json:"service_desk"`
	Themes      []Theme     `json:"themes"`
}

// Summary holds the headline figures of the dashboard.
type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Closed     int `json:"closed"`
	Overdue    int `json:"overdue"`
	Stale      int `json:"stale"`
	Unassigned int `json:"unassigned"`
	Blocked    int `json:"blocked"`

	AvgOpenAgeDays *float64 `json:"avg_open_age_days"`
	// AgeExcluded counts open tickets left out of age figures for lack of a creation date.
	AgeExcluded int `json:"age_excluded"`

	Resolved             int      `json:"resolved"`
	AvgResolutionDays    *float64 `json:"avg_resolution_days"`
	MedianResolutionDays *float64 `json:"median_resolution_days"`
	ResolutionRatePct    *float64 `json:"resolution_rate_pct"`

	StoryPoints     float64 `json:"story_points"`
	OpenStoryPoints float64 `json:"open_story_points"`
}

// Count is one key of a frequency table.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupStats summarises the tickets sharing one grouping value.
type GroupStats struct {
	Key     string `json:"key"`
	Total   int    `json:"total"`
	Open    int    `json:"open"`
	Closed  int    `json:"closed"`
	Overdue int    `json:"overdue"`
	Stale   int    `json:"stale"`
	Blocked int    `json:"blocked"`

	AvgOpenAgeDays    *float64 `json:"avg_open_age_days"`
	AvgResolutionDays *float64 `json:"avg_resolution_days"`
	PctDone           float64  `json:"pct_done"`
	StoryPoints       float64  `json:"story_points"`
	SLAPct            *float64 `json:"sla_pct"`
}

// MonthPoint is one month of the created/resolved trend ("2006-01").
type MonthPoint struct {
	Month    string `json:"month"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// AgeBucket is a half-open [MinDays, MaxDays) range of open ticket ages.
// MaxDays is null for the last, unbounded bucket.
type AgeBucket struct {
	Label   string `json:"label"`
	MinDays int    `json:"min_days"`
	MaxDays *int   `json:"max_days"`
	Count   int    `json:"count"`
}

// ResolutionStat is the mean resolution time of one issue type or priority.
type ResolutionStat struct {
	Key      string   `json:"key"`
	Tickets  int      `json:"tickets"`
	Resolved int      `json:"resolved"`
	AvgDays  *float64 `json:"avg_days"`
}

// AgedTicket is an entry of the oldest open tickets list.
type AgedTicket struct {
	Key      string  `json:"key"`
	Summary  string  `json:"summary"`
	Assignee string  `json:"assignee"`
	Status   string  `json:"status"`
	AgeDays  float64 `json:"age_days"`
	Created  string  `json:"created"`
}

// StaleRow describes the activity of one open ticket.
type StaleRow struct {
	Key            string   `json:"key"`
	Summary        string   `json:"summary"`
	Reporter       string   `json:"reporter"`
	Assignee       string   `json:"assignee"`
	Status         string   `json:"status"`
	LastActivity   string   `json:"last_activity"`
	DaysSince      *float64 `json:"days_since"`
	Stale          bool     `json:"stale"`
	CommentPreview string   `json:"comment_preview"`
}

// FlowEdge counts tickets raised by one reporter and assigned to one assignee.
type FlowEdge struct {
	Reporter string `json:"reporter"`
	Assignee string `json:"assignee"`
	Count    int    `json:"count"`
}

// Estimation compares original estimates to logged time.
type Estimation struct {
	Samples  int `json:"samples"`
	Within   int `json:"within_20_pct"`
	Moderate int `json:"within_50_pct"`
	Over     int `json:"over_50_pct"`

	ByType []TypeEstimate `json:"by_type"`
}

// TypeEstimate is the estimate versus actual comparison of one issue type.
type TypeEstimate struct {
	Type                string   `json:"type"`
	Count               int      `json:"count"`
	AvgEstimateSeconds  int64    `json:"avg_estimate_seconds"`
	AvgTimeSpentSeconds int64    `json:"avg_time_spent_seconds"`
	AvgEstimate         string   `json:"avg_estimate"`
	AvgTimeSpent        string   `json:"avg_time_spent"`
	AccuracyPct         *float64 `json:"accuracy_pct"`
}

// SLA is the service level compliance over tickets that report it.
type SLA struct {
	Met           int             `json:"met"`
	Missed        int             `json:"missed"`
	CompliancePct *float64        `json:"compliance_pct"`
	ByPriority    []SLAByPriority `json:"by_priority"`
}

// SLAByPriority is the SLA compliance of one raw priority label.
type SLAByPriority struct {
	Priority      string   `json:"priority"`
	Met           int      `json:"met"`
	Missed        int      `json:"missed"`
	CompliancePct *float64 `json:"compliance_pct"`
}

// ServiceDesk carries the frequency tables and averages of service desk exports.
type ServiceDesk struct {
	SubcategoryCounts  []Count  `json:"subcategory_counts"`
	ContactTypeCounts  []Count  `json:"contact_type_counts"`
	EscalationCounts   []Count  `json:"escalation_counts"`
	AvgReassignment    *float64 `json:"avg_reassignment"`
	MedianReassignment *float64 `json:"median_reassignment"`
	AvgReopen          *float64 `json:"avg_reopen"`
}

// Theme is a recurring phrase in ticket summaries.
type Theme struct {
	Theme    string   `json:"theme"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

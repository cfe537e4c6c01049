package ticket

import (
	"maps"
	"regexp"
	"strings"
)

var jiraStatuses = map[string]StatusCategory{
	"open":                     CategoryOpen,
	"to do":                    CategoryOpen,
	"todo":                     CategoryOpen,
	"backlog":                  CategoryOpen,
	"new":                      CategoryOpen,
	"reopened":                 CategoryOpen,
	"selected for development": CategoryOpen,
	"in progress":              CategoryInProgress,
	"in review":                CategoryInProgress,
	"in development":           CategoryInProgress,
	"in testing":               CategoryInProgress,
	"ready for review":         CategoryInProgress,
	"in uat":                   CategoryInProgress,
	"active":                   CategoryInProgress,
	"blocked":                  CategoryInProgress,
	"waiting":                  CategoryInProgress,
	"on hold":                  CategoryInProgress,
	"impediment":               CategoryInProgress,
	"done":                     CategoryDone,
	"closed":                   CategoryDone,
	"resolved":                 CategoryDone,
	"complete":                 CategoryDone,
	"completed":                CategoryDone,
	"cancelled":                CategoryDone,
	"canceled":                 CategoryDone,
	"won't do":                 CategoryDone,
	"wontdo":                   CategoryDone,
	"duplicate":                CategoryDone,
	"rejected":                 CategoryDone,
}

// ServiceNow state columns are exported either as labels or as their numeric choice values.
var serviceNowStatuses = map[string]StatusCategory{
	"new":                 CategoryOpen,
	"open":                CategoryOpen,
	"1":                   CategoryOpen,
	"in progress":         CategoryInProgress,
	"work in progress":    CategoryInProgress,
	"on hold":             CategoryInProgress,
	"pending":             CategoryInProgress,
	"assess":              CategoryInProgress,
	"assessed":            CategoryInProgress,
	"authorize":           CategoryInProgress,
	"scheduled":           CategoryInProgress,
	"implement":           CategoryInProgress,
	"review":              CategoryInProgress,
	"root cause analysis": CategoryInProgress,
	"fix in progress":     CategoryInProgress,
	"active":              CategoryInProgress,
	"awaiting info":       CategoryInProgress,
	"awaiting problem":    CategoryInProgress,
	"awaiting change":     CategoryInProgress,
	"awaiting vendor":     CategoryInProgress,
	"2":                   CategoryInProgress,
	"3":                   CategoryInProgress,
	"-5":                  CategoryInProgress,
	"resolved":            CategoryDone,
	"closed":              CategoryDone,
	"cancelled":           CategoryDone,
	"canceled":            CategoryDone,
	"closed complete":     CategoryDone,
	"closed incomplete":   CategoryDone,
	"closed skipped":      CategoryDone,
	"complete":            CategoryDone,
	"4":                   CategoryDone,
	"6":                   CategoryDone,
	"7":                   CategoryDone,
	"8":                   CategoryDone,
}

var jiraBlocked = []string{"blocked", "waiting", "on hold", "impediment"}

var serviceNowBlocked = []string{
	"on hold", "pending", "awaiting info", "awaiting problem",
	"awaiting change", "awaiting vendor", "-5", "3",
}

var priorities = map[string]PriorityLevel{
	"critical": PriorityCritical,
	"highest":  PriorityCritical,
	"blocker":  PriorityCritical,
	"urgent":   PriorityCritical,
	"p1":       PriorityCritical,
	"1":        PriorityCritical,
	"high":     PriorityHigh,
	"major":    PriorityHigh,
	"p2":       PriorityHigh,
	"2":        PriorityHigh,
	"medium":   PriorityMedium,
	"normal":   PriorityMedium,
	"moderate": PriorityMedium,
	"p3":       PriorityMedium,
	"3":        PriorityMedium,
	"low":      PriorityLow,
	"lowest":   PriorityLow,
	"minor":    PriorityLow,
	"trivial":  PriorityLow,
	"planning": PriorityLow,
	"p4":       PriorityLow,
	"p5":       PriorityLow,
	"4":        PriorityLow,
	"5":        PriorityLow,
}

// Classifier maps raw status and priority labels onto the normalized enums.
// Unknown labels fall back to CategoryOther / PriorityUnknown.
type Classifier struct {
	statuses   map[string]StatusCategory
	blocked    map[string]bool
	priorities map[string]PriorityLevel
}

// NewClassifier returns a classifier seeded with the built-in tables of the dialect.
func NewClassifier(d Dialect) *Classifier {
	statuses, blocked := jiraStatuses, jiraBlocked
	if d == ServiceNow {
		statuses, blocked = serviceNowStatuses, serviceNowBlocked
	}

	c := &Classifier{
		statuses:   maps.Clone(statuses),
		blocked:    make(map[string]bool, len(blocked)),
		priorities: maps.Clone(priorities),
	}
	for _, b := range blocked {
		c.blocked[b] = true
	}
	return c
}

// Overrides are site specific additions to the built-in classification tables.
type Overrides struct {
	Statuses   map[string]StatusCategory
	Blocked    []string
	Priorities map[string]PriorityLevel
}

// Extend adds or replaces table entries. Keys are normalized the same way lookups are.
func (c *Classifier) Extend(o Overrides) {
	for k, v := range o.Statuses {
		c.statuses[normalizeLabel(k)] = v
	}
	for _, b := range o.Blocked {
		c.blocked[normalizeLabel(b)] = true
	}
	for k, v := range o.Priorities {
		c.priorities[normalizeLabel(k)] = v
	}
}

// Status classifies a raw status name.
func (c *Classifier) Status(raw string) StatusCategory {
	if cat, ok := c.statuses[normalizeLabel(raw)]; ok {
		return cat
	}
	return CategoryOther
}

// IsBlocked reports whether the raw status denotes a blocked or waiting ticket.
func (c *Classifier) IsBlocked(raw string) bool {
	return c.blocked[normalizeLabel(raw)]
}

// numberedPriority matches ServiceNow's "2 - High" form.
var numberedPriority = regexp.MustCompile(`^(\d+)\s*-\s*(.+)$`)

// Priority normalizes a raw priority. Numbered ServiceNow labels such as
// "2 - High" are tried whole, then by number, then by the text after the dash.
// Any other label missing from the table is PriorityUnknown.
func (c *Classifier) Priority(raw string) PriorityLevel {
	label := normalizeLabel(raw)
	if p, ok := c.priorities[label]; ok {
		return p
	}
	if m := numberedPriority.FindStringSubmatch(label); m != nil {
		if p, ok := c.priorities[m[1]]; ok {
			return p
		}
		if p, ok := c.priorities[strings.TrimSpace(m[2])]; ok {
			return p
		}
	}
	return PriorityUnknown
}

// ParseStatusCategory accepts the category names used in classification files.
func ParseStatusCategory(s string) (StatusCategory, bool) {
	switch strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(s)) {
	case "open":
		return CategoryOpen, true
	case "inprogress":
		return CategoryInProgress, true
	case "done":
		return CategoryDone, true
	case "other":
		return CategoryOther, true
	}
	return "", false
}

// ParsePriorityLevel accepts the level names used in classification files.
func ParsePriorityLevel(s string) (PriorityLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical, true
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	case "unknown":
		return PriorityUnknown, true
	}
	return "", false
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"ticket-dash/internal/ticket"
)

// classificationFile is the YAML layout of a classification override file:
//
//	statuses:   { "awaiting customer": in_progress, "shipped": done }
//	blocked:    [ "awaiting customer" ]
//	priorities: { "p0": critical }
type classificationFile struct {
	Statuses   map[string]string `yaml:"statuses"`
	Blocked    []string          `yaml:"blocked"`
	Priorities map[string]string `yaml:"priorities"`
}

var categoryNames = map[string]ticket.StatusCategory{
	"open":        ticket.CategoryOpen,
	"todo":        ticket.CategoryOpen,
	"in_progress": ticket.CategoryInProgress,
	"inprogress":  ticket.CategoryInProgress,
	"done":        ticket.CategoryDone,
	"closed":      ticket.CategoryDone,
	"other":       ticket.CategoryOther,
}

var levelNames = map[string]ticket.PriorityLevel{
	"critical": ticket.PriorityCritical,
	"high":     ticket.PriorityHigh,
	"medium":   ticket.PriorityMedium,
	"low":      ticket.PriorityLow,
	"unknown":  ticket.PriorityUnknown,
}

// LoadClassification reads a YAML classification file.
func LoadClassification(path string) (ticket.Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ticket.Overrides{}, fmt.Errorf("failed to read classification file: %w", err)
	}
	o, err := ParseClassification(data)
	if err != nil {
		return ticket.Overrides{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// ParseClassification decodes classification YAML into table overrides.
// Unknown category or level names are errors; the tables themselves stay untouched.
func ParseClassification(data []byte) (ticket.Overrides, error) {
	var f classificationFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return ticket.Overrides{}, fmt.Errorf("invalid classification yaml: %w", err)
	}

	o := ticket.Overrides{Blocked: f.Blocked}
	if len(f.Statuses) > 0 {
		o.Statuses = make(map[string]ticket.StatusCategory, len(f.Statuses))
		for status, name := range f.Statuses {
			c, ok := categoryNames[enumKey(name)]
			if !ok {
				return ticket.Overrides{}, fmt.Errorf("status %q: unknown category %q", status, name)
			}
			o.Statuses[status] = c
		}
	}
	if len(f.Priorities) > 0 {
		o.Priorities = make(map[string]ticket.PriorityLevel, len(f.Priorities))
		for priority, name := range f.Priorities {
			l, ok := levelNames[enumKey(name)]
			if !ok {
				return ticket.Overrides{}, fmt.Errorf("priority %q: unknown level %q", priority, name)
			}
			o.Priorities[priority] = l
		}
	}
	return o, nil
}

func enumKey(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
}

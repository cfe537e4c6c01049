package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/samber/lo"

	"ticket-dash/internal/ticket"
)

const (
	jiraLayout       = "2/Jan/06 3:04 PM"
	serviceNowLayout = "2006-01-02 15:04:05"
)

type GeneratorConfig struct {
	Dialect      ticket.Dialect
	Scenario     string // "mild", "chaos" or "drift"
	Distribution string // "uniform" or "weibull"
	Count        int
	Now          time.Time
	Seed         int64
}

// Export is a generated CSV file: a header row and one row per ticket.
type Export struct {
	Header []string
	Rows   [][]string
}

var (
	people     = []string{"Alice Martin", "Bob Chen", "Carla Diaz", "Dev Patel", "Erin Walsh", "Femi Okafor"}
	reporters  = []string{"Grace Hopper", "Hal Abelson", "Ivy Nguyen", "Jon Bauer"}
	components = []string{"API", "Billing", "Login", "Mobile", "Search"}
	summaries  = []string{
		"Login page returns error after password reset",
		"Export to CSV times out for large reports",
		"VPN connection drops every few minutes",
		"Search results missing recent documents",
		"Billing invoice shows wrong tax amount",
		"Mobile app crashes on startup",
		"Printer not working on third floor",
		"Password reset email never arrives",
	}
	notes = []string{
		"Reproduced on staging, looking into logs.",
		"Waiting for the customer to confirm.",
		"Deployed a fix, monitoring.",
		"Escalated to the platform team.",
	}
)

// Generate builds a synthetic export. The same config always yields the same rows.
func Generate(cfg GeneratorConfig) (*Export, error) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var gen func(rng *rand.Rand, i int, s sample) []string
	var header []string
	switch cfg.Dialect {
	case ticket.Jira:
		header, gen = jiraHeader, jiraRow
	case ticket.ServiceNow:
		header, gen = serviceNowHeader, serviceNowRow
	default:
		return nil, fmt.Errorf("unknown dialect %q", cfg.Dialect)
	}

	// One arrival per day on average, the last one close to cfg.Now.
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count)
	export := &Export{Header: header}
	for i := 0; i < cfg.Count; i++ {
		arrival := tArrival.Add(time.Duration(i*24+rng.Intn(8)) * time.Hour)
		s := lifecycle(rng, cfg, i, arrival)
		export.Rows = append(export.Rows, gen(rng, i, s))
	}
	return export, nil
}

// sample is the lifecycle of one generated ticket.
type sample struct {
	created  time.Time
	updated  time.Time
	resolved *time.Time
	progress float64
	days     float64
	stale    bool
}

func lifecycle(rng *rand.Rand, cfg GeneratorConfig, i int, arrival time.Time) sample {
	// 1. Determine Parameters
	k, lambda := 2.5, 9.5
	switch cfg.Scenario {
	case "chaos":
		k = 0.8
		if cfg.Distribution == "weibull" {
			lambda = 12.0
		}
	case "drift":
		ratio := float64(i) / float64(cfg.Count)
		k = 2.5 - (1.7 * ratio)
		lambda = 9.5 + (2.5 * ratio)
	}

	// 2. Sample the time to resolution in days
	var total float64
	if cfg.Distribution == "weibull" {
		total = weibullSample(rng, k, lambda)
	} else {
		total = 6.0 + rng.Float64()*5.0
		if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
			total += 10 + rng.Float64()*15
		}
		if cfg.Scenario == "drift" && i > cfg.Count/2 {
			total *= 2.0
		}
	}

	// 3. Place the ticket on its lifecycle at cfg.Now
	s := sample{created: arrival, days: total}
	ageDays := cfg.Now.Sub(arrival).Hours() / 24.0
	if ageDays > total {
		done := arrival.Add(time.Duration(total * 24 * float64(time.Hour)))
		s.resolved = &done
		s.updated = done
		s.progress = 1
		return s
	}
	s.progress = ageDays / total
	s.updated = arrival.Add(time.Duration(ageDays * 0.8 * 24 * float64(time.Hour)))
	if cfg.Scenario == "chaos" && rng.Float64() < 0.3 {
		s.updated = arrival
		s.stale = true
	}
	return s
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

var jiraHeader = []string{
	"Issue key", "Summary", "Issue Type", "Status", "Priority", "Assignee", "Reporter",
	"Created", "Updated", "Resolved", "Due Date", "Labels", "Component/s", "Sprint",
	"Custom field (Story Points)", "Custom field (Epic Link)", "Original Estimate", "Time Spent", "Comment",
}

func jiraRow(rng *rand.Rand, i int, s sample) []string {
	status := "Done"
	switch {
	case s.resolved != nil:
	case s.stale:
		status = "Blocked"
	case s.progress < 0.15:
		status = "To Do"
	case s.progress < 0.70:
		status = "In Progress"
	default:
		status = "In Review"
	}

	points := []int{1, 2, 3, 5, 8}[rng.Intn(5)]
	estimate := int64(points) * 4 * 3600
	spent := ""
	if s.resolved != nil {
		spent = strconv.FormatInt(int64(float64(estimate)*(0.6+rng.Float64()*1.2)), 10)
	}
	labels := lo.Uniq([]string{pick(rng, []string{"backend", "frontend", "infra"}), pick(rng, []string{"backend", "customer", "tech-debt"})})
	comment := fmt.Sprintf("%s;%s;%s", s.updated.Format(jiraLayout), strings.ToLower(strings.Fields(pick(rng, people))[0]), pick(rng, notes))

	return []string{
		fmt.Sprintf("OPS-%d", i+1),
		pick(rng, summaries),
		pick(rng, []string{"Bug", "Bug", "Story", "Task"}),
		status,
		pick(rng, []string{"Highest", "High", "Medium", "Medium", "Low"}),
		maybe(rng, 0.1, pick(rng, people)),
		pick(rng, reporters),
		s.created.Format(jiraLayout),
		s.updated.Format(jiraLayout),
		formatPtr(s.resolved, jiraLayout),
		maybe(rng, 0.5, s.created.AddDate(0, 0, 14).Format("2/Jan/06")),
		strings.Join(labels, ", "),
		pick(rng, components),
		fmt.Sprintf("Sprint %d", s.created.YearDay()/14+1),
		strconv.Itoa(points),
		fmt.Sprintf("OPS-E%d", rng.Intn(3)+1),
		strconv.FormatInt(estimate, 10),
		spent,
		comment,
	}
}

var serviceNowHeader = []string{
	"Number", "Short description", "State", "Priority", "Assigned to", "Assignment group", "Caller",
	"Category", "Subcategory", "Contact type", "Opened at", "Updated at", "Resolved at",
	"Made SLA", "Reassignment count", "Reopen count", "Escalation", "Business duration", "Work notes",
}

var slaDays = map[string]float64{"1 - Critical": 1, "2 - High": 3, "3 - Moderate": 7, "4 - Low": 14}

func serviceNowRow(rng *rand.Rand, i int, s sample) []string {
	state := "Resolved"
	switch {
	case s.resolved != nil:
		if rng.Float64() < 0.4 {
			state = "Closed"
		}
	case s.stale:
		state = "On Hold"
	case s.progress < 0.15:
		state = "New"
	default:
		state = "In Progress"
	}

	priority := pick(rng, []string{"1 - Critical", "2 - High", "3 - Moderate", "3 - Moderate", "4 - Low"})
	madeSLA, duration := "", ""
	if s.resolved != nil {
		madeSLA = strconv.FormatBool(s.days <= slaDays[priority])
		// Business hours: eight per calendar day.
		duration = strconv.Itoa(int(s.days*8) * 3600)
	}
	category := pick(rng, []string{"Network", "Hardware", "Software", "Inquiry / Help"})
	note := fmt.Sprintf("%s - %s (Work notes)\n%s", s.updated.Format(serviceNowLayout), pick(rng, people), pick(rng, notes))

	return []string{
		fmt.Sprintf("INC%07d", 10000+i),
		pick(rng, summaries),
		state,
		priority,
		maybe(rng, 0.1, pick(rng, people)),
		pick(rng, []string{"Service Desk", "Network", "Database", "Desktop Support"}),
		pick(rng, reporters),
		category,
		strings.ToLower(strings.Fields(category)[0]) + " issue",
		pick(rng, []string{"Email", "Phone", "Self-service", "Walk-in"}),
		s.created.Format(serviceNowLayout),
		s.updated.Format(serviceNowLayout),
		formatPtr(s.resolved, serviceNowLayout),
		madeSLA,
		strconv.Itoa(rng.Intn(4)),
		strconv.Itoa(lo.Ternary(rng.Float64() < 0.1, 1, 0)),
		lo.Ternary(s.stale, "Overdue", "Normal"),
		duration,
		note,
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}

// maybe returns v, or an empty cell with probability p.
func maybe(rng *rand.Rand, p float64, v string) string {
	if rng.Float64() < p {
		return ""
	}
	return v
}

func formatPtr(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

// Save writes the export as CSV, replacing path atomically.
func Save(path string, e *Export) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(e.Header); err != nil {
		return err
	}
	if err := w.WriteAll(e.Rows); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

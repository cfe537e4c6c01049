package report

import (
	"fmt"
	"io"
	"strings"

	"ticket-dash/internal/stats"
	"ticket-dash/internal/ticket"
	"ticket-dash/internal/visuals"
)

const markdownGroupRows = 15

// RenderMarkdown writes a Markdown report with Mermaid charts.
func RenderMarkdown(w io.Writer, doc Document) error {
	b := doc.Bundle
	s := b.Summary
	var sb strings.Builder

	// 1. Header and summary
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString(fmt.Sprintf("_%s export", doc.Dialect.DisplayName()))
	if doc.SourceFile != "" {
		sb.WriteString(fmt.Sprintf(" `%s`", doc.SourceFile))
	}
	sb.WriteString(fmt.Sprintf(", as of %s, stale after %d days._\n\n", b.AsOf, b.StaleDays))

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Total tickets", fmt.Sprint(s.Total)},
		{"Open", fmt.Sprint(s.Open)},
		{"Closed", fmt.Sprint(s.Closed)},
		{"Resolution rate", pct(s.ResolutionRatePct)},
		{"Avg age (open)", dayValue(s.AvgOpenAgeDays)},
		{"Avg resolution", dayValue(s.AvgResolutionDays)},
		{"Median resolution", dayValue(s.MedianResolutionDays)},
		{"Overdue", fmt.Sprint(s.Overdue)},
		{fmt.Sprintf("Stale (> %dd)", b.StaleDays), fmt.Sprint(s.Stale)},
		{"Unassigned (open)", fmt.Sprint(s.Unassigned)},
		{"Blocked", fmt.Sprint(s.Blocked)},
	}
	if doc.Dialect == ticket.ServiceNow {
		rows = append(rows,
			[2]string{"SLA compliance", pct(b.SLA.CompliancePct)},
			[2]string{"Avg reassignments", number(b.ServiceDesk.AvgReassignment)},
			[2]string{"Median reassignments", number(b.ServiceDesk.MedianReassignment)},
			[2]string{"Avg reopens", number(b.ServiceDesk.AvgReopen)},
		)
	} else {
		rows = append(rows, [2]string{"Story points (open / total)", fmt.Sprintf("%.1f / %.1f", s.OpenStoryPoints, s.StoryPoints)})
	}
	if doc.Rejected > 0 {
		rows = append(rows, [2]string{"Rejected rows", fmt.Sprint(doc.Rejected)})
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", r[0], r[1]))
	}
	sb.WriteString("\n")

	// 2. Charts
	writeChart(&sb, "Trend", visuals.GenerateTrendChart(b.Trend))
	writeChart(&sb, "Age of Open Tickets", visuals.GenerateAgeHistogram(b.AgeHistogram))
	writeChart(&sb, "Oldest Open Tickets", visuals.GenerateOldestOpenChart(b.OldestOpen))
	writeChart(&sb, "Status", visuals.GenerateCountPie("Status", b.StatusCounts))
	writeChart(&sb, "Resolution by Type", visuals.GenerateResolutionChart("Avg Resolution by Type", b.ResolutionByType))
	if doc.Dialect == ticket.ServiceNow {
		writeChart(&sb, "SLA", visuals.GenerateSLAPie(b.SLA))
	}

	// 3. Breakdowns
	writeGroups(&sb, "Assignees", b.Assignees)
	writeGroups(&sb, "Reporters", b.Reporters)
	if doc.Dialect == ticket.ServiceNow {
		writeGroups(&sb, "Assignment Groups", b.AssignmentGroups)
		writeGroups(&sb, "Categories", b.Categories)
	} else {
		writeGroups(&sb, "Epics", b.Epics)
		writeGroups(&sb, "Sprints", b.Sprints)
		writeGroups(&sb, "Components", b.Components)
		writeGroups(&sb, "Labels", b.Labels)
	}

	// 4. Attention lists
	if len(b.OldestOpen) > 0 {
		sb.WriteString("## Oldest Open\n\n| Key | Summary | Assignee | Status | Age (days) |\n|---|---|---|---|---|\n")
		for _, a := range b.OldestOpen {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.1f |\n", cell(a.Key), cell(a.Summary), cell(a.Assignee), cell(a.Status), a.AgeDays))
		}
		sb.WriteString("\n")
	}
	if len(b.Themes) > 0 {
		sb.WriteString("## Recurring Themes\n\n| Theme | Tickets |\n|---|---|\n")
		for _, t := range b.Themes {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", cell(t.Theme), t.Count))
		}
		sb.WriteString("\n")
	}
	if b.Estimation.Samples > 0 {
		e := b.Estimation
		sb.WriteString("## Estimation Accuracy\n\n")
		sb.WriteString(fmt.Sprintf("%d estimated tickets: %d within 20%%, %d within 50%%, %d over 50%%.\n\n", e.Samples, e.Within, e.Moderate, e.Over))
		sb.WriteString("| Type | Count | Avg Estimate | Avg Spent | Spent / Estimate |\n|---|---|---|---|---|\n")
		for _, te := range e.ByType {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n", cell(te.Type), te.Count, te.AvgEstimate, te.AvgTimeSpent, pct(te.AccuracyPct)))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeChart(sb *strings.Builder, heading, chart string) {
	if chart == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", heading, chart))
}

func writeGroups(sb *strings.Builder, heading string, groups []stats.GroupStats) {
	if len(groups) == 0 || (len(groups) == 1 && groups[0].Key == "None") {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n| Name | Total | Open | Closed | Overdue | Stale | Avg Age | Done |\n|---|---|---|---|---|---|---|---|\n", heading))
	for i, g := range groups {
		if i == markdownGroupRows {
			sb.WriteString(fmt.Sprintf("| _%d more_ | | | | | | | |\n", len(groups)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %s | %.1f%% |\n",
			cell(g.Key), g.Total, g.Open, g.Closed, g.Overdue, g.Stale, dayValue(g.AvgOpenAgeDays), g.PctDone))
	}
	sb.WriteString("\n")
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ", "\r", "").Replace(s)
}

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func dayValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return ticket.FormatDays(*v)
}

func number(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

package visuals

import (
	"fmt"
	"math"
	"strings"

	"ticket-dash/internal/stats"
)

// maxTrendPoints keeps xychart labels readable; longer series are subsampled.
const maxTrendPoints = 36

func quote(s string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "'"))
}

// GenerateAgeHistogram creates a Mermaid bar chart of open ticket ages.
func GenerateAgeHistogram(buckets []stats.AgeBucket) string {
	total := 0
	maxVal := 0
	var labels, values []string
	for _, b := range buckets {
		labels = append(labels, quote(b.Label))
		values = append(values, fmt.Sprintf("%d", b.Count))
		total += b.Count
		maxVal = max(maxVal, b.Count)
	}
	if total == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Open Ticket Age\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Tickets\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateTrendChart creates a Mermaid chart with created tickets as bars and
// resolved tickets as a line, one point per month.
func GenerateTrendChart(trend []stats.MonthPoint) string {
	if len(trend) == 0 {
		return ""
	}

	// Subsample points if the chart is too wide for Mermaid's layout engine
	subsampleRate := 1
	if len(trend) > maxTrendPoints {
		subsampleRate = int(math.Ceil(float64(len(trend)) / maxTrendPoints))
	}

	var labels, created, resolved []string
	maxVal := 0
	for i, p := range trend {
		if i%subsampleRate == 0 || i == len(trend)-1 {
			labels = append(labels, quote(p.Month))
			created = append(created, fmt.Sprintf("%d", p.Created))
			resolved = append(resolved, fmt.Sprintf("%d", p.Resolved))
		}
		maxVal = max(maxVal, p.Created, p.Resolved)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Created vs Resolved per Month\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Tickets\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(created, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(resolved, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateOldestOpenChart creates a Mermaid bar chart of the oldest open tickets.
func GenerateOldestOpenChart(aged []stats.AgedTicket) string {
	if len(aged) == 0 {
		return ""
	}

	var labels, values []string
	maxVal := 0.0
	for _, a := range aged {
		labels = append(labels, quote(a.Key))
		values = append(values, fmt.Sprintf("%.1f", a.AgeDays))
		maxVal = math.Max(maxVal, a.AgeDays)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Oldest Open Tickets (Top %d)\"\n", len(aged)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Age (Days)\" 0 --> %d\n", int(math.Ceil(math.Max(maxVal*1.1, 1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateResolutionChart creates a Mermaid bar chart of average resolution days.
// Keys without resolved tickets are left out.
func GenerateResolutionChart(title string, rows []stats.ResolutionStat) string {
	var labels, values []string
	maxVal := 0.0
	for _, r := range rows {
		if r.AvgDays == nil {
			continue
		}
		labels = append(labels, quote(r.Key))
		values = append(values, fmt.Sprintf("%.1f", *r.AvgDays))
		maxVal = math.Max(maxVal, *r.AvgDays)
	}
	if len(values) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Avg Days\" 0 --> %d\n", int(math.Ceil(math.Max(maxVal*1.2, 1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCountPie creates a Mermaid pie chart of a frequency table.
func GenerateCountPie(title string, counts []stats.Count) string {
	if len(counts) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title %s\n", title))
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("    %s : %d\n", quote(c.Key), c.Count))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateSLAPie creates a Mermaid pie chart of met versus missed SLAs.
func GenerateSLAPie(sla stats.SLA) string {
	if sla.Met+sla.Missed == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title SLA Compliance\n")
	sb.WriteString(fmt.Sprintf("    \"Met\" : %d\n", sla.Met))
	sb.WriteString(fmt.Sprintf("    \"Missed\" : %d\n", sla.Missed))
	sb.WriteString("```")
	return sb.String()
}

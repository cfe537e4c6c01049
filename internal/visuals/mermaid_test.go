package visuals

import (
	"fmt"
	"strings"
	"testing"

	"ticket-dash/internal/stats"
)

func f(v float64) *float64 { return &v }

func TestCharts_EmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		got  string
	}{
		{"AgeHistogram", GenerateAgeHistogram([]stats.AgeBucket{{Label: "< 7d"}})},
		{"Trend", GenerateTrendChart(nil)},
		{"OldestOpen", GenerateOldestOpenChart(nil)},
		{"Resolution", GenerateResolutionChart("By Type", []stats.ResolutionStat{{Key: "Bug", Tickets: 2}})},
		{"CountPie", GenerateCountPie("Status", nil)},
		{"SLAPie", GenerateSLAPie(stats.SLA{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != "" {
				t.Errorf("expected no chart, got %q", tt.got)
			}
		})
	}
}

func TestGenerateAgeHistogram(t *testing.T) {
	got := GenerateAgeHistogram([]stats.AgeBucket{
		{Label: "< 7d", Count: 4},
		{Label: "7-14d", Count: 10},
	})
	for _, want := range []string{
		"```mermaid\nxychart-beta\n",
		`x-axis ["< 7d", "7-14d"]`,
		`y-axis "Tickets" 0 --> 12`,
		"bar [4, 10]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("chart lacks %q:\n%s", want, got)
		}
	}
}

func TestGenerateTrendChart_Subsamples(t *testing.T) {
	var trend []stats.MonthPoint
	for i := 0; i < 48; i++ {
		trend = append(trend, stats.MonthPoint{Month: fmt.Sprintf("20%02d-%02d", 20+i/12, i%12+1), Created: i, Resolved: 1})
	}
	got := GenerateTrendChart(trend)

	line := ""
	for _, l := range strings.Split(got, "\n") {
		if strings.Contains(l, "x-axis") {
			line = l
		}
	}
	if n := strings.Count(line, ",") + 1; n > maxTrendPoints {
		t.Errorf("x-axis has %d labels, want at most %d", n, maxTrendPoints)
	}
	if !strings.Contains(line, `"2023-12"`) {
		t.Error("the last month must always be kept")
	}
	if !strings.Contains(got, "line [") || !strings.Contains(got, "bar [") {
		t.Error("trend needs both series")
	}
}

func TestGenerateResolutionChart_SkipsNoData(t *testing.T) {
	got := GenerateResolutionChart("Resolution by Type", []stats.ResolutionStat{
		{Key: "Bug", AvgDays: f(2.5)},
		{Key: "Story"},
		{Key: `Say "hi"`, AvgDays: f(1)},
	})
	if strings.Contains(got, "Story") {
		t.Error("keys without data must be skipped")
	}
	if !strings.Contains(got, `x-axis ["Bug", "Say 'hi'"]`) || !strings.Contains(got, "bar [2.5, 1.0]") {
		t.Errorf("unexpected chart:\n%s", got)
	}
}

func TestGenerateSLAPie(t *testing.T) {
	got := GenerateSLAPie(stats.SLA{Met: 3, Missed: 1})
	if !strings.Contains(got, "pie title SLA Compliance") || !strings.Contains(got, `"Missed" : 1`) {
		t.Errorf("unexpected chart:\n%s", got)
	}
}

package report

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "ticket_dash_"

// Registry builds a Prometheus registry holding the summary figures of a
// bundle. The dialect is attached as a label to every series.
func Registry(doc Document) (*prometheus.Registry, error) {
	if doc.Bundle == nil {
		return nil, errors.New("report: document has no metrics bundle")
	}
	b := doc.Bundle
	s := b.Summary
	dialect := string(doc.Dialect)
	reg := prometheus.NewRegistry()

	tickets := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "tickets",
			Help: "Number of tickets by state.",
		},
		[]string{"dialect", "state"},
	)
	byStatus := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "status_tickets",
			Help: "Number of tickets by raw status.",
		},
		[]string{"dialect", "status"},
	)
	byAssignee := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "assignee_open_tickets",
			Help: "Open tickets per assignee.",
		},
		[]string{"dialect", "assignee"},
	)
	days := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "days",
			Help: "Age and resolution averages in days.",
		},
		[]string{"dialect", "measure"},
	)
	ratio := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "ratio_percent",
			Help: "Resolution rate and SLA compliance in percent.",
		},
		[]string{"dialect", "measure"},
	)
	rejected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        metricPrefix + "rejected_rows",
		Help:        "Input rows that did not become tickets.",
		ConstLabels: prometheus.Labels{"dialect": dialect},
	})

	for _, c := range []prometheus.Collector{tickets, byStatus, byAssignee, days, ratio, rejected} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	// 1. Counters of the summary
	states := map[string]int{
		"total":      s.Total,
		"open":       s.Open,
		"closed":     s.Closed,
		"overdue":    s.Overdue,
		"stale":      s.Stale,
		"unassigned": s.Unassigned,
		"blocked":    s.Blocked,
		"resolved":   s.Resolved,
	}
	for state, n := range states {
		tickets.WithLabelValues(dialect, state).Set(float64(n))
	}
	for _, c := range b.StatusCounts {
		byStatus.WithLabelValues(dialect, c.Key).Set(float64(c.Count))
	}
	for _, g := range b.Assignees {
		byAssignee.WithLabelValues(dialect, g.Key).Set(float64(g.Open))
	}
	rejected.Set(float64(doc.Rejected))

	// 2. Averages only when there is data behind them
	optional := func(vec *prometheus.GaugeVec, measure string, v *float64) {
		if v != nil {
			vec.WithLabelValues(dialect, measure).Set(*v)
		}
	}
	optional(days, "avg_open_age", s.AvgOpenAgeDays)
	optional(days, "avg_resolution", s.AvgResolutionDays)
	optional(days, "median_resolution", s.MedianResolutionDays)
	optional(ratio, "resolution_rate", s.ResolutionRatePct)
	optional(ratio, "sla_compliance", b.SLA.CompliancePct)

	return reg, nil
}

// WritePromFile writes the summary gauges in the node_exporter textfile format.
func WritePromFile(path string, doc Document) error {
	reg, err := Registry(doc)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write prometheus file %s: %w", path, err)
	}
	return nil
}

package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"ticket-dash/internal/ticket"
)

const (
	oldestOpenLimit  = 10
	oldestSummaryLen = 60
	staleSummaryLen  = 80
	stalePreviewLen  = 60
	dateOnly         = "2006-01-02"
	monthLayout      = "2006-01"
)

// ageBounds are the lower edges of the age histogram buckets in days.
// Each bucket is half-open: [ageBounds[i], ageBounds[i+1]).
var ageBounds = []int{0, 7, 14, 30, 60, 90}

var ageLabels = []string{"< 7d", "7-14d", "14-30d", "30-60d", "60-90d", "90d+"}

// AgeBucketIndex returns the histogram bucket of an age in days.
// Negative ages fall into the first bucket.
func AgeBucketIndex(ageDays float64) int {
	for i := len(ageBounds) - 1; i > 0; i-- {
		if ageDays >= float64(ageBounds[i]) {
			return i
		}
	}
	return 0
}

func computeAgeHistogram(all []facts) []AgeBucket {
	out := make([]AgeBucket, len(ageBounds))
	for i, edge := range ageBounds {
		out[i] = AgeBucket{Label: ageLabels[i], MinDays: edge}
		if i+1 < len(ageBounds) {
			out[i].MaxDays = ptr(ageBounds[i+1])
		}
	}
	for _, f := range all {
		if f.ageDays != nil {
			out[AgeBucketIndex(*f.ageDays)].Count++
		}
	}
	return out
}

// computeTrend counts created and resolved tickets per calendar month. Both
// series cover the same months, in chronological order.
func computeTrend(all []facts) []MonthPoint {
	points := make(map[string]*MonthPoint)
	at := func(month string) *MonthPoint {
		p, ok := points[month]
		if !ok {
			p = &MonthPoint{Month: month}
			points[month] = p
		}
		return p
	}

	for _, f := range all {
		if f.t.CreatedAt != nil {
			at(f.t.CreatedAt.Format(monthLayout)).Created++
		}
		if f.t.ResolvedAt != nil {
			at(f.t.ResolvedAt.Format(monthLayout)).Resolved++
		}
	}

	out := lo.MapToSlice(points, func(_ string, p *MonthPoint) MonthPoint { return *p })
	slices.SortFunc(out, func(a, b MonthPoint) int { return cmp.Compare(a.Month, b.Month) })
	return out
}

// computeOldestOpen lists the open tickets with the greatest age; equal ages
// are ordered by key.
func computeOldestOpen(all []facts, limit int) []AgedTicket {
	aged := lo.Filter(all, func(f facts, _ int) bool { return f.ageDays != nil })
	slices.SortFunc(aged, func(a, b facts) int {
		if c := cmp.Compare(*b.ageDays, *a.ageDays); c != 0 {
			return c
		}
		return cmp.Compare(a.t.Key, b.t.Key)
	})
	if len(aged) > limit {
		aged = aged[:limit]
	}

	return lo.Map(aged, func(f facts, _ int) AgedTicket {
		return AgedTicket{
			Key:      f.t.Key,
			Summary:  truncate(f.t.Summary, oldestSummaryLen),
			Assignee: orDefault(f.t.Assignee, unassignedKey),
			Status:   f.t.Status,
			AgeDays:  round1(*f.ageDays),
			Created:  f.t.CreatedAt.Format(dateOnly),
		}
	})
}

// computeStaleness lists every open ticket, least recently active first.
// Tickets without any activity timestamp sort last.
func computeStaleness(all []facts) []StaleRow {
	open := lo.Filter(all, func(f facts, _ int) bool { return f.open })
	slices.SortFunc(open, func(a, b facts) int {
		switch {
		case a.sinceActivity == nil && b.sinceActivity != nil:
			return 1
		case a.sinceActivity != nil && b.sinceActivity == nil:
			return -1
		case a.sinceActivity != nil && b.sinceActivity != nil:
			if c := cmp.Compare(*b.sinceActivity, *a.sinceActivity); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.t.Key, b.t.Key)
	})

	return lo.Map(open, func(f facts, _ int) StaleRow {
		row := StaleRow{
			Key:            f.t.Key,
			Summary:        truncate(f.t.Summary, staleSummaryLen),
			Reporter:       orDefault(f.t.Reporter, unknownKey),
			Assignee:       orDefault(f.t.Assignee, unassignedKey),
			Status:         f.t.Status,
			Stale:          f.stale,
			CommentPreview: truncate(f.t.CommentPreview, stalePreviewLen),
		}
		if last := f.t.LastActivity(); last != nil {
			row.LastActivity = last.Format(dateOnly)
			row.DaysSince = ptr(round1(*f.sinceActivity))
		}
		return row
	})
}

// resolutionBy averages resolution time per key. Every key that occurs among the
// tickets is listed; keys without a resolved ticket carry a null average.
func resolutionBy(all []facts, key func(t *ticket.Ticket) string) []ResolutionStat {
	type acc struct {
		tickets int
		days    []float64
	}
	groups := make(map[string]*acc)
	for _, f := range all {
		k := key(f.t)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.tickets++
		if f.resolutionDays != nil {
			a.days = append(a.days, *f.resolutionDays)
		}
	}

	out := lo.MapToSlice(groups, func(k string, a *acc) ResolutionStat {
		return ResolutionStat{Key: k, Tickets: a.tickets, Resolved: len(a.days), AvgDays: mean(a.days)}
	})
	slices.SortFunc(out, func(a, b ResolutionStat) int {
		if c := cmp.Compare(b.Tickets, a.Tickets); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

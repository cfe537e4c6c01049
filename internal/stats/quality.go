package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/lo"

	"ticket-dash/internal/ticket"
)

// Estimation band limits on |spent - estimate| / estimate.
const (
	withinRatio   = 0.20
	moderateRatio = 0.50
)

// EstimationBand classifies a relative estimation error.
type EstimationBand int

const (
	BandWithin EstimationBand = iota
	BandModerate
	BandOver
)

// EstimationError returns |spent - estimate| / estimate. It reports false when
// either value is missing or the estimate is not positive.
func EstimationError(t *ticket.Ticket) (float64, bool) {
	if t.OriginalEstimateSeconds == nil || t.TimeSpentSeconds == nil || *t.OriginalEstimateSeconds <= 0 {
		return 0, false
	}
	est := float64(*t.OriginalEstimateSeconds)
	return math.Abs(float64(*t.TimeSpentSeconds)-est) / est, true
}

// BandOf places an estimation error into its band. Band edges belong to the tighter band.
func BandOf(ratio float64) EstimationBand {
	switch {
	case ratio <= withinRatio:
		return BandWithin
	case ratio <= moderateRatio:
		return BandModerate
	default:
		return BandOver
	}
}

func computeEstimation(all []facts) Estimation {
	e := Estimation{}
	byType := make(map[string][]*ticket.Ticket)

	for _, f := range all {
		ratio, ok := EstimationError(f.t)
		if !ok {
			continue
		}
		e.Samples++
		switch BandOf(ratio) {
		case BandWithin:
			e.Within++
		case BandModerate:
			e.Moderate++
		default:
			e.Over++
		}
		k := orDefault(f.t.IssueType, unknownKey)
		byType[k] = append(byType[k], f.t)
	}

	e.ByType = lo.MapToSlice(byType, func(k string, ts []*ticket.Ticket) TypeEstimate {
		n := int64(len(ts))
		est := lo.SumBy(ts, func(t *ticket.Ticket) int64 { return *t.OriginalEstimateSeconds }) / n
		spent := lo.SumBy(ts, func(t *ticket.Ticket) int64 { return *t.TimeSpentSeconds }) / n
		te := TypeEstimate{
			Type:                k,
			Count:               len(ts),
			AvgEstimateSeconds:  est,
			AvgTimeSpentSeconds: spent,
			AvgEstimate:         ticket.FormatDuration(est),
			AvgTimeSpent:        ticket.FormatDuration(spent),
		}
		if est > 0 {
			te.AccuracyPct = ptr(round1(float64(spent) / float64(est) * 100))
		}
		return te
	})
	slices.SortFunc(e.ByType, func(a, b TypeEstimate) int { return cmp.Compare(a.Type, b.Type) })
	return e
}

// computeSLA measures compliance over tickets that carry a made-SLA flag.
func computeSLA(all []facts) SLA {
	s := SLA{}
	type acc struct{ met, missed int }
	byPriority := make(map[string]*acc)

	for _, f := range all {
		made := f.t.ServiceNow.MadeSLA
		if made == nil {
			continue
		}
		k := orDefault(f.t.Priority, unknownKey)
		a, ok := byPriority[k]
		if !ok {
			a = &acc{}
			byPriority[k] = a
		}
		if *made {
			s.Met++
			a.met++
		} else {
			s.Missed++
			a.missed++
		}
	}

	s.CompliancePct = percent(s.Met, s.Met+s.Missed)
	s.ByPriority = lo.MapToSlice(byPriority, func(k string, a *acc) SLAByPriority {
		return SLAByPriority{Priority: k, Met: a.met, Missed: a.missed, CompliancePct: percent(a.met, a.met+a.missed)}
	})
	slices.SortFunc(s.ByPriority, func(a, b SLAByPriority) int { return cmp.Compare(a.Priority, b.Priority) })
	return s
}

func computeServiceDesk(all []facts) ServiceDesk {
	var reassign, reopen []float64
	var reassignCounts []int
	for _, f := range all {
		if n := f.t.ServiceNow.ReassignmentCount; n != nil {
			reassign = append(reassign, float64(*n))
			reassignCounts = append(reassignCounts, *n)
		}
		if n := f.t.ServiceNow.ReopenCount; n != nil {
			reopen = append(reopen, float64(*n))
		}
	}

	sd := ServiceDesk{
		SubcategoryCounts: countBy(all, func(f facts) []string { return one(f.t.ServiceNow.Subcategory) }),
		ContactTypeCounts: countBy(all, func(f facts) []string { return one(f.t.ServiceNow.ContactType) }),
		EscalationCounts:  countBy(all, func(f facts) []string { return one(f.t.ServiceNow.Escalation) }),
		AvgReassignment:   mean(reassign),
		AvgReopen:         mean(reopen),
	}
	if len(reassignCounts) > 0 {
		sd.MedianReassignment = ptr(round1(CalculateMedianDiscrete(reassignCounts)))
	}
	return sd
}

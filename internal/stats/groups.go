package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"ticket-dash/internal/ticket"
)

// Keys that stand in for absent grouping values.
const (
	unassignedKey = "Unassigned"
	unknownKey    = "Unknown"
	noneKey       = "None"
)

const flowLimit = 20

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func listOrDefault(values []string, fallback string) []string {
	if len(values) == 0 {
		return []string{fallback}
	}
	return values
}

// sortCounts orders by count descending, then key ascending.
func sortCounts(out []Count) []Count {
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// countBy builds a frequency table. A ticket contributes once per distinct key;
// empty keys are skipped.
func countBy(all []facts, keys func(f facts) []string) []Count {
	counts := make(map[string]int)
	for _, f := range all {
		for _, k := range lo.Uniq(keys(f)) {
			if k != "" {
				counts[k]++
			}
		}
	}
	return sortCounts(lo.MapToSlice(counts, func(k string, n int) Count {
		return Count{Key: k, Count: n}
	}))
}

func one(s string) []string { return []string{s} }

func computeCounts(b *Bundle, all []facts) {
	b.StatusCounts = countBy(all, func(f facts) []string { return one(orDefault(f.t.Status, unknownKey)) })
	b.StatusCategoryCounts = countBy(all, func(f facts) []string { return one(string(f.t.StatusCategory)) })
	b.PriorityCounts = countBy(all, func(f facts) []string { return one(orDefault(f.t.Priority, unknownKey)) })
	b.PriorityLevelCounts = countBy(all, func(f facts) []string { return one(string(f.t.PriorityLevel)) })
	b.TypeCounts = countBy(all, func(f facts) []string { return one(orDefault(f.t.IssueType, unknownKey)) })
	b.FixVersionCounts = countBy(all, func(f facts) []string { return f.t.FixVersions })
	b.Workload = countBy(all, func(f facts) []string {
		if !f.open {
			return nil
		}
		return one(orDefault(f.t.Assignee, unassignedKey))
	})
}

type groupAcc struct {
	GroupStats
	ages        []float64
	resolutions []float64
	slaMet      int
	slaTotal    int
}

// groupBy builds per-key statistics. Tickets without a value are bucketed under
// the fallback key of the keys function, so no ticket is dropped.
func groupBy(all []facts, keys func(t *ticket.Ticket) []string) []GroupStats {
	groups := make(map[string]*groupAcc)
	for _, f := range all {
		for _, k := range lo.Uniq(keys(f.t)) {
			g, ok := groups[k]
			if !ok {
				g = &groupAcc{GroupStats: GroupStats{Key: k}}
				groups[k] = g
			}
			g.add(f)
		}
	}

	out := make([]GroupStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.finish())
	}
	slices.SortFunc(out, func(a, b GroupStats) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func (g *groupAcc) add(f facts) {
	g.Total++
	if f.open {
		g.Open++
		if f.t.Blocked {
			g.Blocked++
		}
		if f.ageDays != nil {
			g.ages = append(g.ages, *f.ageDays)
		}
	} else {
		g.Closed++
	}
	if f.overdue {
		g.Overdue++
	}
	if f.stale {
		g.Stale++
	}
	if f.resolutionDays != nil {
		g.resolutions = append(g.resolutions, *f.resolutionDays)
	}
	if f.t.StoryPoints != nil {
		g.StoryPoints += *f.t.StoryPoints
	}
	if sla := f.t.ServiceNow.MadeSLA; sla != nil {
		g.slaTotal++
		if *sla {
			g.slaMet++
		}
	}
}

func (g *groupAcc) finish() GroupStats {
	s := g.GroupStats
	s.AvgOpenAgeDays = mean(g.ages)
	s.AvgResolutionDays = mean(g.resolutions)
	if pct := percent(s.Closed, s.Total); pct != nil {
		s.PctDone = *pct
	}
	s.StoryPoints = round1(s.StoryPoints)
	s.SLAPct = percent(g.slaMet, g.slaTotal)
	return s
}

func computeGroups(b *Bundle, all []facts) {
	b.Assignees = groupBy(all, func(t *ticket.Ticket) []string { return one(orDefault(t.Assignee, unassignedKey)) })
	b.Reporters = groupBy(all, func(t *ticket.Ticket) []string { return one(orDefault(t.Reporter, unknownKey)) })
	b.Epics = groupBy(all, func(t *ticket.Ticket) []string { return one(orDefault(t.Epic, noneKey)) })
	b.Sprints = groupBy(all, func(t *ticket.Ticket) []string { return one(orDefault(t.Sprint, noneKey)) })
	b.Components = groupBy(all, func(t *ticket.Ticket) []string { return listOrDefault(t.Components, noneKey) })
	b.Labels = groupBy(all, func(t *ticket.Ticket) []string { return listOrDefault(t.Labels, noneKey) })
	b.AssignmentGroups = groupBy(all, func(t *ticket.Ticket) []string {
		return one(orDefault(t.ServiceNow.AssignmentGroup, noneKey))
	})
	b.Categories = groupBy(all, func(t *ticket.Ticket) []string { return one(orDefault(t.ServiceNow.Category, noneKey)) })
}

// computeFlow counts reporter to assignee pairs and keeps the busiest ones.
func computeFlow(all []facts, limit int) []FlowEdge {
	type pair struct{ reporter, assignee string }
	counts := make(map[pair]int)
	for _, f := range all {
		counts[pair{orDefault(f.t.Reporter, unknownKey), orDefault(f.t.Assignee, unassignedKey)}]++
	}

	out := lo.MapToSlice(counts, func(p pair, n int) FlowEdge {
		return FlowEdge{Reporter: p.reporter, Assignee: p.assignee, Count: n}
	})
	slices.SortFunc(out, func(a, b FlowEdge) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Reporter, b.Reporter); c != 0 {
			return c
		}
		return cmp.Compare(a.Assignee, b.Assignee)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

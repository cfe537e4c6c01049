package stats

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ticket-dash/internal/ticket"
)

// DefaultStaleDays is the inactivity threshold used when none is configured.
const DefaultStaleDays = 14

// ErrInvalidOptions is returned for a negative stale threshold or a zero clock.
var ErrInvalidOptions = errors.New("invalid metrics options")

// Options are the inputs of Compute besides the tickets themselves.
type Options struct {
	// StaleDays is the number of days without activity after which an open ticket is stale.
	StaleDays int
	// Now is the reference time for ages, staleness and overdue checks.
	Now time.Time
}

// facts are the per-ticket values several sections share. They are derived
// once from the ticket and the options, and only read afterwards.
type facts struct {
	t    *ticket.Ticket
	open bool
	// ageDays is set for open tickets with a creation date; negative ages clamp to zero.
	ageDays *float64
	// sinceActivity is the number of days since the last update or comment.
	sinceActivity *float64
	stale         bool
	overdue       bool
	// resolutionDays is set when both creation and resolution dates exist.
	resolutionDays *float64
}

func derive(t *ticket.Ticket, opts Options) facts {
	f := facts{t: t, open: t.IsOpen()}

	if f.open && t.CreatedAt != nil {
		f.ageDays = ptr(max(days(opts.Now.Sub(*t.CreatedAt)), 0))
	}
	if last := t.LastActivity(); last != nil {
		f.sinceActivity = ptr(days(opts.Now.Sub(*last)))
	}
	if f.open {
		f.stale = f.sinceActivity != nil && *f.sinceActivity > float64(opts.StaleDays)
		f.overdue = t.DueAt != nil && t.DueAt.Before(opts.Now)
	}
	if t.CreatedAt != nil && t.ResolvedAt != nil {
		f.resolutionDays = ptr(days(t.ResolvedAt.Sub(*t.CreatedAt)))
	}
	return f
}

// Compute derives every aggregate of the bundle from the tickets.
//
// The result depends only on its arguments: the same tickets and options always
// produce the same bundle. Independent sections run concurrently, each filling
// its own part of the bundle; the tickets are never modified.
func Compute(tickets []ticket.Ticket, opts Options) (*Bundle, error) {
	if opts.StaleDays < 0 || opts.Now.IsZero() {
		return nil, fmt.Errorf("%w: stale days %d, now %v", ErrInvalidOptions, opts.StaleDays, opts.Now)
	}

	// 1. Per-ticket facts
	all := make([]facts, len(tickets))
	for i := range tickets {
		all[i] = derive(&tickets[i], opts)
	}

	b := &Bundle{
		AsOf:      opts.Now.UTC().Format(time.RFC3339),
		StaleDays: opts.StaleDays,
	}

	// 2. Independent sections
	var g errgroup.Group
	g.Go(func() error {
		b.Summary = computeSummary(all)
		return nil
	})
	g.Go(func() error {
		computeCounts(b, all)
		return nil
	})
	g.Go(func() error {
		computeGroups(b, all)
		return nil
	})
	g.Go(func() error {
		b.Trend = computeTrend(all)
		b.AgeHistogram = computeAgeHistogram(all)
		return nil
	})
	g.Go(func() error {
		b.ResolutionByType = resolutionBy(all, func(t *ticket.Ticket) string { return orDefault(t.IssueType, unknownKey) })
		b.ResolutionByPriority = resolutionBy(all, func(t *ticket.Ticket) string { return orDefault(t.Priority, unknownKey) })
		return nil
	})
	g.Go(func() error {
		b.OldestOpen = computeOldestOpen(all, oldestOpenLimit)
		b.Staleness = computeStaleness(all)
		b.Flow = computeFlow(all, flowLimit)
		return nil
	})
	g.Go(func() error {
		b.Estimation = computeEstimation(all)
		return nil
	})
	g.Go(func() error {
		b.SLA = computeSLA(all)
		b.ServiceDesk = computeServiceDesk(all)
		return nil
	})
	g.Go(func() error {
		b.Themes = ClusterThemes(tickets, maxThemes)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

func computeSummary(all []facts) Summary {
	s := Summary{Total: len(all)}
	var ages, resolutions []float64

	for _, f := range all {
		t := f.t
		if f.open {
			s.Open++
			if t.Assignee == "" {
				s.Unassigned++
			}
			if t.Blocked {
				s.Blocked++
			}
			if f.ageDays != nil {
				ages = append(ages, *f.ageDays)
			} else {
				s.AgeExcluded++
			}
		} else {
			s.Closed++
		}
		if f.overdue {
			s.Overdue++
		}
		if f.stale {
			s.Stale++
		}
		if f.resolutionDays != nil {
			resolutions = append(resolutions, *f.resolutionDays)
		}
		if t.StoryPoints != nil {
			s.StoryPoints += *t.StoryPoints
			if f.open {
				s.OpenStoryPoints += *t.StoryPoints
			}
		}
	}

	s.AvgOpenAgeDays = mean(ages)
	s.Resolved = len(resolutions)
	s.AvgResolutionDays = mean(resolutions)
	s.MedianResolutionDays = median(resolutions)
	s.ResolutionRatePct = percent(s.Closed, s.Total)
	s.StoryPoints = round1(s.StoryPoints)
	s.OpenStoryPoints = round1(s.OpenStoryPoints)
	return s
}

package dialect

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"ticket-dash/internal/ticket"
)

// ErrUnknownSource is returned for a source selector other than auto, jira or servicenow.
var ErrUnknownSource = errors.New("unknown source")

// Source is the caller's dialect choice. SourceAuto defers to Detect.
type Source string

const (
	SourceAuto       Source = "auto"
	SourceJira       Source = Source(ticket.Jira)
	SourceServiceNow Source = Source(ticket.ServiceNow)
)

// ParseSource validates a source selector. The empty string means auto.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceAuto:
		return SourceAuto, nil
	case SourceJira:
		return SourceJira, nil
	case SourceServiceNow:
		return SourceServiceNow, nil
	}
	return "", fmt.Errorf("%w %q (want auto, jira or servicenow)", ErrUnknownSource, s)
}

// Signature is the static header fingerprint of one dialect.
type Signature struct {
	Dialect ticket.Dialect
	// Indicators maps squashed header names to their weight.
	Indicators map[string]int
	// PrefixWeight is added once per header starting with Prefix.
	Prefix       string
	PrefixWeight int
}

// Signatures are scored in this order; on equal scores the first one wins.
var Signatures = []Signature{
	{
		Dialect: ticket.Jira,
		Indicators: map[string]int{
			"issuekey":    3,
			"issuetype":   1,
			"sprint":      1,
			"epiclink":    1,
			"epicname":    1,
			"storypoints": 1,
			"fixversions": 1,
		},
		Prefix:       "customfield",
		PrefixWeight: 1,
	},
	{
		Dialect: ticket.ServiceNow,
		Indicators: map[string]int{
			"number":            1,
			"openedat":          2,
			"openedby":          1,
			"assignmentgroup":   1,
			"madesla":           2,
			"shortdescription":  1,
			"configurationitem": 1,
			"cmdbci":            1,
			"contacttype":       1,
			"callerid":          1,
			"resolvedat":        1,
			"reassignmentcount": 1,
			"incidentstate":     1,
			"sysclassname":      2,
			"syscreatedon":      2,
			"sysupdatedon":      1,
			"serviceoffering":   1,
			"businessservice":   1,
		},
	},
}

// Detection is the outcome of choosing a dialect for a header.
type Detection struct {
	Dialect ticket.Dialect `json:"dialect"`
	// Explicit is set when the caller forced the dialect and no scoring happened.
	Explicit bool                        `json:"explicit"`
	Scores   map[ticket.Dialect]int      `json:"scores,omitempty"`
	Matched  map[ticket.Dialect][]string `json:"matched,omitempty"`
	// Ambiguous is set when the best score was shared or every score was zero;
	// Dialect then holds the first signature's dialect (Jira).
	Ambiguous bool `json:"ambiguous"`
}

// Detect scores the header against every signature. The strictly highest score
// wins. Ties, including the all-zero case, fall back to the first signature and
// are flagged as ambiguous.
func Detect(header []string) Detection {
	det := Detection{
		Scores:  make(map[ticket.Dialect]int, len(Signatures)),
		Matched: make(map[ticket.Dialect][]string, len(Signatures)),
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[squash(h)] = true
	}

	for _, sig := range Signatures {
		score := 0
		var matched []string
		for name, weight := range sig.Indicators {
			if seen[name] {
				score += weight
				matched = append(matched, name)
			}
		}
		if sig.Prefix != "" {
			for _, h := range header {
				if strings.HasPrefix(squash(h), sig.Prefix) {
					score += sig.PrefixWeight
					matched = append(matched, squash(h))
				}
			}
		}
		slices.Sort(matched)
		det.Scores[sig.Dialect] = score
		det.Matched[sig.Dialect] = matched
	}

	best, bestScore, tied := Signatures[0].Dialect, -1, false
	for _, sig := range Signatures {
		s := det.Scores[sig.Dialect]
		switch {
		case s > bestScore:
			best, bestScore, tied = sig.Dialect, s, false
		case s == bestScore:
			tied = true
		}
	}

	det.Dialect = best
	det.Ambiguous = tied || bestScore == 0
	if tied {
		det.Dialect = Signatures[0].Dialect
	}
	return det
}

// Choose applies an explicit source or falls back to Detect for SourceAuto.
func Choose(src Source, header []string) Detection {
	if src != SourceAuto && src != "" {
		return Detection{Dialect: ticket.Dialect(src), Explicit: true}
	}
	return Detect(header)
}

package ingest

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ticket"
)

// Options controls a single import.
type Options struct {
	// Source forces a dialect; SourceAuto (or empty) scores the header.
	Source dialect.Source
	// Overrides extend the built-in classification tables of the chosen dialect.
	Overrides ticket.Overrides
}

// Result is everything the import produced: the tickets in input order plus the
// bookkeeping a caller needs to report what was skipped.
type Result struct {
	Dialect   ticket.Dialect    `json:"dialect"`
	Detection dialect.Detection `json:"detection"`
	Columns   dialect.ColumnMap `json:"-"`
	Built
}

// Rejected is the number of data rows that did not become tickets.
func (r *Result) Rejected() int {
	return len(r.Rejections)
}

// Parse runs the whole import pipeline over CSV content: read, choose the dialect
// from the header, map the columns and build the tickets.
//
// Only structural problems are errors (ErrEmptyInput, ErrMalformedCSV,
// ErrUndecodable). Bad cells become absent values and key-less rows become
// rejections.
func Parse(r io.Reader, opts Options) (*Result, error) {
	// 1. Read the table
	table, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	// 2. Choose the dialect from the header only
	det := dialect.Choose(opts.Source, table.Header)
	log.Debug().
		Str("dialect", string(det.Dialect)).
		Bool("explicit", det.Explicit).
		Bool("ambiguous", det.Ambiguous).
		Interface("scores", det.Scores).
		Msg("Source dialect chosen")

	// 3. Map the columns
	cm := dialect.Normalize(table.Header, det.Dialect)
	if missing := cm.Unmapped(det.Dialect); len(missing) > 0 {
		log.Debug().Interface("fields", missing).Msg("Canonical fields without a column")
	}

	// 4. Build the tickets
	cls := ticket.NewClassifier(det.Dialect)
	cls.Extend(opts.Overrides)

	built, err := Build(table.Rows, cm, det.Dialect, cls)
	if err != nil {
		return nil, fmt.Errorf("failed to build tickets: %w", err)
	}

	log.Debug().
		Int("rows", len(table.Rows)).
		Int("tickets", len(built.Tickets)).
		Int("rejected", len(built.Rejections)).
		Int("blank", built.BlankRows).
		Int("inverted_resolutions", built.InvertedResolutions).
		Msg("Tickets built")

	return &Result{
		Dialect:   det.Dialect,
		Detection: det,
		Columns:   cm,
		Built:     *built,
	}, nil
}

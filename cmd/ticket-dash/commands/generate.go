package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ingest"
	"ticket-dash/internal/report"
	"ticket-dash/internal/stats"
)

const defaultOutput = "dashboard.html"

type generateFlags struct {
	output    string
	title     string
	source    string
	format    string
	promFile  string
	now       string
	staleDays int
	open      bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", defaultOutput, "report file, - for stdout")
	fs.StringVar(&f.title, "title", "", "report title (derived from the ticket keys when empty)")
	fs.StringVar(&f.source, "source", "auto", "export dialect: auto, jira or servicenow")
	fs.StringVar(&f.format, "format", "html", "report format: html, markdown or json")
	fs.StringVar(&f.promFile, "prom-file", "", "also write summary gauges in Prometheus textfile format")
	fs.StringVar(&f.now, "now", "", "reference time in RFC3339 (default: current time)")
	fs.IntVar(&f.staleDays, "stale-days", stats.DefaultStaleDays, "days without activity after which an open ticket is stale")
	fs.BoolVar(&f.open, "open", false, "open the report in the default browser")
}

// settings merges configuration and flags; an explicitly set flag wins.
type settings struct {
	output    string
	title     string
	source    dialect.Source
	format    report.Format
	staleDays int
	now       time.Time
}

func (a *app) settings(cmd *cobra.Command) (settings, error) {
	fs := cmd.Flags()
	pick := func(name, flagValue, cfgValue string) string {
		if fs.Changed(name) {
			return flagValue
		}
		return cfgValue
	}

	s := settings{
		output:    pick("output", a.gen.output, a.cfg.Output),
		title:     pick("title", a.gen.title, a.cfg.Title),
		staleDays: a.cfg.StaleDays,
		now:       time.Now(),
	}
	if fs.Changed("stale-days") {
		s.staleDays = a.gen.staleDays
	}

	var err error
	if s.source, err = dialect.ParseSource(pick("source", a.gen.source, string(a.cfg.Source))); err != nil {
		return settings{}, err
	}
	if s.format, err = report.ParseFormat(pick("format", a.gen.format, a.cfg.Format)); err != nil {
		return settings{}, err
	}
	if a.gen.now != "" {
		if s.now, err = time.Parse(time.RFC3339, a.gen.now); err != nil {
			return settings{}, fmt.Errorf("invalid --now %q: want RFC3339", a.gen.now)
		}
	}

	// The default file name follows the format.
	if s.output == defaultOutput && s.format != report.FormatHTML {
		s.output = strings.TrimSuffix(defaultOutput, ".html") + extension(s.format)
	}
	return s, nil
}

func extension(f report.Format) string {
	switch f {
	case report.FormatMarkdown:
		return ".md"
	case report.FormatJSON:
		return ".json"
	default:
		return ".html"
	}
}

func (a *app) generate(cmd *cobra.Command, input string) error {
	s, err := a.settings(cmd)
	if err != nil {
		return err
	}

	// 1. Import
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	res, err := ingest.Parse(f, ingest.Options{Source: s.source, Overrides: a.cfg.Overrides})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", input, err)
	}
	logImport(res)

	// 2. Metrics
	bundle, err := stats.Compute(res.Tickets, stats.Options{StaleDays: s.staleDays, Now: s.now})
	if err != nil {
		return err
	}
	logSummary(bundle)

	doc := report.Document{
		Title:      report.AutoTitle(s.title, res.Dialect, res.Tickets),
		SourceFile: filepath.Base(input),
		Dialect:    res.Dialect,
		Bundle:     bundle,
		Tickets:    res.Tickets,
		Headers:    res.Columns.Headers,
		Rejected:   res.Rejected(),
		BlankRows:  res.BlankRows,
	}

	// 3. Outputs
	if s.output == "-" {
		if err := report.Render(cmd.OutOrStdout(), s.format, doc); err != nil {
			return err
		}
	}

	var g errgroup.Group
	if s.output != "-" {
		g.Go(func() error { return report.WriteFile(s.output, s.format, doc) })
	}
	if a.gen.promFile != "" {
		g.Go(func() error { return report.WritePromFile(a.gen.promFile, doc) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if s.output != "-" {
		log.Info().Str("path", s.output).Str("format", string(s.format)).Str("title", doc.Title).Msg("Report written")
	}
	if a.gen.promFile != "" {
		log.Info().Str("path", a.gen.promFile).Msg("Prometheus textfile written")
	}

	// 4. Optionally show it
	if a.gen.open && s.output != "-" {
		if err := browser.OpenFile(s.output); err != nil {
			log.Warn().Err(err).Str("path", s.output).Msg("Failed to open report in browser")
		}
	}
	return nil
}

func logImport(res *ingest.Result) {
	det := res.Detection
	switch {
	case det.Explicit:
		log.Info().Str("dialect", res.Dialect.DisplayName()).Msg("Using forced source dialect")
	case det.Ambiguous:
		log.Warn().
			Interface("scores", det.Scores).
			Str("dialect", res.Dialect.DisplayName()).
			Msg("Could not tell the export dialect apart, pass --source to choose one")
	default:
		log.Info().Str("dialect", res.Dialect.DisplayName()).Interface("scores", det.Scores).Msg("Detected source dialect")
	}

	if len(res.Tickets) == 0 && res.Rejected() > 0 {
		log.Warn().Msg("No row had a ticket key; check the dialect and the key column")
	}
	if n := res.Rejected(); n > 0 {
		log.Warn().Int("rows", n).Msg("Rows rejected")
		for _, r := range res.Rejections {
			log.Debug().Int("row", r.Row).Str("key", r.Key).Str("reason", r.Reason).Msg("Rejected row")
		}
	}
	if res.InvertedResolutions > 0 {
		log.Warn().Int("tickets", res.InvertedResolutions).Msg("Resolution dates before creation were dropped")
	}
	log.Info().Int("tickets", len(res.Tickets)).Int("blank_rows", res.BlankRows).Msg("Export imported")
}

func logSummary(b *stats.Bundle) {
	s := b.Summary
	ev := log.Debug().
		Int("total", s.Total).
		Int("open", s.Open).
		Int("closed", s.Closed).
		Int("overdue", s.Overdue).
		Int("stale", s.Stale).
		Int("unassigned", s.Unassigned).
		Int("blocked", s.Blocked)
	if s.AvgOpenAgeDays != nil {
		ev = ev.Float64("avg_open_age_days", *s.AvgOpenAgeDays)
	}
	if s.AvgResolutionDays != nil {
		ev = ev.Float64("avg_resolution_days", *s.AvgResolutionDays)
	}
	ev.Msg("Metrics computed")

	for _, g := range b.Assignees {
		log.Debug().Str("assignee", g.Key).Int("total", g.Total).Int("open", g.Open).Int("stale", g.Stale).Msg("Assignee")
	}
}

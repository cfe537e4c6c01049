package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ingest"
	"ticket-dash/internal/report"
	"ticket-dash/internal/stats"
	"ticket-dash/internal/ticket"
)

// DetectInput is the argument of detect_source.
type DetectInput struct {
	Path string `json:"path" jsonschema:"path of the CSV export, relative paths are resolved against DATA_PATH"`
}

// DetectOutput reports the dialect choice and the column coverage it implies.
type DetectOutput struct {
	Detection dialect.Detection `json:"detection"`
	Columns   int               `json:"columns"`
	Mapped    []dialect.Field   `json:"mapped"`
	Unmapped  []dialect.Field   `json:"unmapped"`
}

// AnalyzeInput is the argument of analyze_export and render_markdown.
type AnalyzeInput struct {
	Path      string `json:"path" jsonschema:"path of the CSV export, relative paths are resolved against DATA_PATH"`
	Source    string `json:"source,omitempty" jsonschema:"auto, jira or servicenow; defaults to the configured source"`
	StaleDays *int   `json:"stale_days,omitempty" jsonschema:"days without activity after which an open ticket is stale"`
	Now       string `json:"now,omitempty" jsonschema:"RFC3339 reference time; defaults to the current time"`
	Title     string `json:"title,omitempty" jsonschema:"report title; derived from the ticket keys when empty"`
}

// AnalyzeOutput is the result of analyze_export.
type AnalyzeOutput struct {
	Title               string             `json:"title"`
	Dialect             ticket.Dialect     `json:"dialect"`
	Detection           dialect.Detection  `json:"detection"`
	Tickets             int                `json:"tickets"`
	Rejections          []ingest.Rejection `json:"rejections"`
	BlankRows           int                `json:"blank_rows"`
	InvertedResolutions int                `json:"inverted_resolutions"`
	Metrics             *stats.Bundle      `json:"metrics"`
}

// MarkdownOutput is the result of render_markdown.
type MarkdownOutput struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

func (s *Server) handleDetectSource(ctx context.Context, req *sdk.CallToolRequest, in DetectInput) (*sdk.CallToolResult, DetectOutput, error) {
	table, err := s.readTable(in.Path)
	if err != nil {
		return nil, DetectOutput{}, err
	}

	det := dialect.Detect(table.Header)
	cm := dialect.Normalize(table.Header, det.Dialect)
	out := DetectOutput{
		Detection: det,
		Columns:   cm.Width(),
		Mapped:    append([]dialect.Field{}, cm.Mapped(det.Dialect)...),
		Unmapped:  append([]dialect.Field{}, cm.Unmapped(det.Dialect)...),
	}
	log.Debug().Str("path", in.Path).Str("dialect", string(det.Dialect)).Bool("ambiguous", det.Ambiguous).Msg("detect_source")
	return nil, out, nil
}

func (s *Server) handleAnalyzeExport(ctx context.Context, req *sdk.CallToolRequest, in AnalyzeInput) (*sdk.CallToolResult, AnalyzeOutput, error) {
	doc, res, err := s.analyze(in)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	rejections := res.Rejections
	if rejections == nil {
		rejections = []ingest.Rejection{}
	}
	return nil, AnalyzeOutput{
		Title:               doc.Title,
		Dialect:             res.Dialect,
		Detection:           res.Detection,
		Tickets:             len(res.Tickets),
		Rejections:          rejections,
		BlankRows:           res.BlankRows,
		InvertedResolutions: res.InvertedResolutions,
		Metrics:             doc.Bundle,
	}, nil
}

func (s *Server) handleRenderMarkdown(ctx context.Context, req *sdk.CallToolRequest, in AnalyzeInput) (*sdk.CallToolResult, MarkdownOutput, error) {
	doc, _, err := s.analyze(in)
	if err != nil {
		return nil, MarkdownOutput{}, err
	}

	var sb strings.Builder
	if err := report.RenderMarkdown(&sb, doc); err != nil {
		return nil, MarkdownOutput{}, err
	}
	return nil, MarkdownOutput{Title: doc.Title, Markdown: sb.String()}, nil
}

// analyze runs the import and the metrics engine for one tool call.
func (s *Server) analyze(in AnalyzeInput) (report.Document, *ingest.Result, error) {
	// 1. Resolve the options, tool arguments win over configuration
	opts := ingest.Options{Source: dialect.SourceAuto}
	staleDays := stats.DefaultStaleDays
	title := in.Title
	if s.cfg != nil {
		opts.Source = s.cfg.Source
		opts.Overrides = s.cfg.Overrides
		staleDays = s.cfg.StaleDays
		if title == "" {
			title = s.cfg.Title
		}
	}
	if in.Source != "" {
		src, err := dialect.ParseSource(in.Source)
		if err != nil {
			return report.Document{}, nil, err
		}
		opts.Source = src
	}
	if in.StaleDays != nil {
		staleDays = *in.StaleDays
	}
	now := s.now()
	if in.Now != "" {
		t, err := time.Parse(time.RFC3339, in.Now)
		if err != nil {
			return report.Document{}, nil, fmt.Errorf("invalid now %q: want RFC3339", in.Now)
		}
		now = t
	}

	// 2. Import
	f, err := s.open(in.Path)
	if err != nil {
		return report.Document{}, nil, err
	}
	defer f.Close()

	res, err := ingest.Parse(f, opts)
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("failed to import %s: %w", in.Path, err)
	}

	// 3. Metrics
	bundle, err := stats.Compute(res.Tickets, stats.Options{StaleDays: staleDays, Now: now})
	if err != nil {
		return report.Document{}, nil, err
	}

	log.Info().
		Str("path", in.Path).
		Str("dialect", string(res.Dialect)).
		Int("tickets", len(res.Tickets)).
		Int("rejected", res.Rejected()).
		Msg("Export analyzed")

	return report.Document{
		Title:      report.AutoTitle(title, res.Dialect, res.Tickets),
		SourceFile: filepath.Base(in.Path),
		Dialect:    res.Dialect,
		Bundle:     bundle,
		Tickets:    res.Tickets,
		Headers:    res.Columns.Headers,
		Rejected:   res.Rejected(),
		BlankRows:  res.BlankRows,
	}, res, nil
}

func (s *Server) open(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}
	f, err := os.Open(s.resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	return f, nil
}

func (s *Server) readTable(path string) (*ingest.Table, error) {
	f, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

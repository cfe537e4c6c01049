package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "detect_source",
		Description: "Inspect the header row of a Jira or ServiceNow CSV export and report which dialect it matches, " +
			"the per-dialect scores and which canonical fields have a column. " +
			"Guidance: Call this first when a file may be ambiguous; pass the dialect explicitly to 'analyze_export' when 'ambiguous' is true.",
	}, s.handleDetectSource)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "analyze_export",
		Description: "Normalize a Jira or ServiceNow CSV export and compute the full metrics bundle: summary figures, " +
			"per-assignee/reporter/epic/sprint breakdowns, age histogram, staleness, estimation accuracy, SLA compliance and recurring themes. \n\n" +
			"Averages without data are null, never zero; do not report a null value as 0. " +
			"Rows without a key are listed in 'rejections' and are not part of any figure.",
	}, s.handleAnalyzeExport)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "render_markdown",
		Description: "Render the dashboard of a CSV export as Markdown with Mermaid charts. " +
			"Use this when the user wants a shareable report rather than raw figures.",
	}, s.handleRenderMarkdown)
}

package commands

import (
	"github.com/spf13/cobra"

	"ticket-dash/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis tools to an MCP client over stdio",
		Long: `serve starts a Model Context Protocol server on stdin/stdout. It offers the tools
detect_source, analyze_export and render_markdown; relative paths are resolved against DATA_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcp.NewServer(a.cfg).Serve(cmd.Context())
		},
	}
}

package cli

import (
	"devops-topics/internal/logging"
	"devops-topics/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the topic tools over MCP (stdio)",
		Long: `Serve the topic tools over the Model Context Protocol on stdin/stdout.

Stdout carries the protocol; enable --log-level to get diagnostics in the log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			logging.L.Info("mcp server starting")
			return mcpserver.Serve(list)
		},
	}
}

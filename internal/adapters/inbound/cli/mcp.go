package cli

import (
	mcpadapter "github.com/monkeycoder/railcheck/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the railcheck MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(root))
	return cmd
}

func newMCPServeCmd(root *rootOptions) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start railcheck MCP server (stdio)",
		Long:  "Start the railcheck MCP server using stdio transport. This lets AI coding assistants validate deployment configuration and read the effective settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			absPath, err := projectDir([]string{projectPath})
			if err != nil {
				return err
			}
			s := mcpadapter.NewRailcheckMCPServer(absPath, root.logger(cmd))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/config"
	"github.com/monkeycoder/railcheck/internal/application"
)

// registerResources registers all railcheck MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, logger *log.Logger) {
	// 1. railcheck://config - effective configuration
	s.AddResource(
		mcplib.NewResource(
			"railcheck://config",
			"Configuration",
			mcplib.WithResourceDescription("Effective railcheck configuration (.railcheck.yaml merged with defaults)"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. railcheck://report - current validation report
	s.AddResource(
		mcplib.NewResource(
			"railcheck://report",
			"Validation Report",
			mcplib.WithResourceDescription("Validation report for the whole repository"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath, logger),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		return jsonContents("railcheck://config", cfg)
	}
}

func handleReportResource(projectPath string, logger *log.Logger) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		outcome := newValidateService(logger).Validate(projectPath, application.ValidateOptions{})
		return jsonContents("railcheck://report", outcome.Report)
	}
}

func jsonContents(uri string, v interface{}) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

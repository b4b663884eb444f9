package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/config"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/gitinfo"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/runlog"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/script"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/workspace"
	"github.com/monkeycoder/railcheck/internal/application"
	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/check"
)

// registerTools registers all railcheck MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, logger *log.Logger) {
	// 1. railcheck_validate
	s.AddTool(
		mcplib.NewTool("railcheck_validate",
			mcplib.WithDescription("Validate the repository's Railway deployment configuration and return the report as JSON"),
			mcplib.WithString("service", mcplib.Description("Validate only this service from .railcheck.yaml")),
			mcplib.WithBoolean("fix", mcplib.Description("Also write the remediation script (it is never executed)")),
		),
		handleValidate(projectPath, logger),
	)

	// 2. railcheck_checkers
	s.AddTool(
		mcplib.NewTool("railcheck_checkers",
			mcplib.WithDescription("List the checkers in run order"),
		),
		handleCheckers(),
	)

	// 3. railcheck_probe
	s.AddTool(
		mcplib.NewTool("railcheck_probe",
			mcplib.WithDescription("GET a deployed service's health endpoint and report status and latency"),
			mcplib.WithString("url", mcplib.Required(), mcplib.Description("Base URL of the deployed service")),
			mcplib.WithString("path", mcplib.Description("Health-check path (default: configured default path)")),
			mcplib.WithNumber("timeout_seconds", mcplib.Description("Per-request timeout in seconds (default 10)")),
		),
		handleProbe(projectPath, logger),
	)
}

// newValidateService wires the standard outbound adapters.
func newValidateService(logger *log.Logger) *application.ValidateService {
	return application.NewValidateService(
		config.New(),
		workspace.New(),
		script.New(),
		runlog.New(),
		gitinfo.New(),
		logger,
	)
}

// validateResult is what railcheck_validate returns.
type validateResult struct {
	Report     *domain.Report `json:"report"`
	ExitCode   int            `json:"exit_code"`
	ScriptPath string         `json:"script_path,omitempty"`
}

func handleValidate(projectPath string, logger *log.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		service, _ := args["service"].(string)
		fix, _ := args["fix"].(bool)

		outcome := newValidateService(logger).Validate(projectPath, application.ValidateOptions{
			Service: service,
			Fix:     fix,
		})
		return jsonResult(validateResult{
			Report:     outcome.Report,
			ExitCode:   outcome.Report.ExitCode(),
			ScriptPath: outcome.ScriptPath,
		})
	}
}

type checkerInfo struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	NeedsParsedConfig bool   `json:"needs_parsed_config"`
}

func checkerCatalogue() []checkerInfo {
	var out []checkerInfo
	for _, c := range check.Default() {
		out = append(out, checkerInfo{Name: c.Name(), Description: c.Description(), NeedsParsedConfig: c.NeedsParsedConfig()})
	}
	return out
}

func handleCheckers() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(checkerCatalogue())
	}
}

func handleProbe(projectPath string, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		path, _ := args["path"].(string)
		if path == "" {
			cfg, err := config.New().Load(projectPath)
			if err != nil {
				cfg = domain.DefaultConfig()
			}
			path = cfg.HealthCheck.DefaultPath
		}
		opts := application.ProbeOptions{Path: path}
		if secs, ok := args["timeout_seconds"].(float64); ok && secs > 0 {
			opts.Timeout = time.Duration(secs * float64(time.Second))
		}

		result, err := application.NewProbeService(nil, logger).Probe(ctx, url, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("probe failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

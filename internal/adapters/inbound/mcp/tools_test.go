package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeycoder/railcheck/internal/domain"
)

func callTool(t *testing.T, handler func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestHandleValidate_ConflictFixture(t *testing.T) {
	res := callTool(t, handleValidate("../../../../testdata/railway/conflict", nil), nil)
	assert.False(t, res.IsError)

	var out validateResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, 1, out.ExitCode)
	assert.Equal(t, domain.StatusFail, out.Report.Status)
	assert.Equal(t, 1, out.Report.Counts.Error)
	assert.Empty(t, out.ScriptPath)
}

func TestHandleValidate_UnknownService(t *testing.T) {
	res := callTool(t, handleValidate("../../../../testdata/railway/clean", nil), map[string]any{"service": "worker"})

	var out validateResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, 1, out.ExitCode)
	require.NotEmpty(t, out.Report.Findings)
	assert.Equal(t, domain.KindConfigMissing, out.Report.Findings[0].Kind)
}

func TestHandleCheckers(t *testing.T) {
	res := callTool(t, handleCheckers(), nil)

	var out []checkerInfo
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out, 5)
	assert.Equal(t, domain.CheckerFileSyntax, out[0].Name)
	assert.False(t, out[0].NeedsParsedConfig)
}

func TestHandleProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := callTool(t, handleProbe(t.TempDir(), nil), map[string]any{"url": srv.URL})
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"healthy": true`)
}

func TestHandleProbe_MissingURL(t *testing.T) {
	res := callTool(t, handleProbe(t.TempDir(), nil), map[string]any{})
	assert.True(t, res.IsError)
}

func TestConfigResource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".railcheck.yaml"), []byte("remediation_path: fix.sh\n"), 0644))

	contents, err := handleConfigResource(dir)(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "railcheck://config", tc.URI)
	assert.Contains(t, tc.Text, `"remediation_path": "fix.sh"`)
}

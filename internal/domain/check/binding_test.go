package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeycoder/railcheck/internal/domain"
)

func descriptorWithStart(cmd string) string {
	return `{"deploy": {"startCommand": ` + quoteJSON(cmd) + `, "healthcheckPath": "/health", "healthcheckTimeout": 300}}`
}

func quoteJSON(s string) string {
	out := `"`
	for _, r := range s {
		if r == '"' || r == '\\' {
			out += `\`
		}
		out += string(r)
	}
	return out + `"`
}

func TestBinding(t *testing.T) {
	tests := []struct {
		name      string
		cmd       string
		sources   map[string]string
		portSev   domain.Severity
		bindSev   domain.Severity
		portMsg   string
		portFixIn string
	}{
		{
			name:    "dynamic port all interfaces",
			cmd:     "uvicorn app.main:app --host 0.0.0.0 --port $PORT",
			portSev: domain.SeverityOK,
			bindSev: domain.SeverityOK,
		},
		{
			name:    "braced port variable in quotes",
			cmd:     `gunicorn app:app --bind "0.0.0.0:${PORT}"`,
			portSev: domain.SeverityOK,
			bindSev: domain.SeverityOK,
		},
		{
			name:      "hardcoded port flag",
			cmd:       "uvicorn app.main:app --host 0.0.0.0 --port 8000",
			portSev:   domain.SeverityError,
			bindSev:   domain.SeverityOK,
			portMsg:   "hardcoded port 8000",
			portFixIn: "--port ${PORT:-8000}",
		},
		{
			name:      "hardcoded port assignment",
			cmd:       "PORT=8000 node server.js",
			sources:   map[string]string{"server.js": `app.listen(process.env.PORT, "0.0.0.0")`},
			portSev:   domain.SeverityError,
			bindSev:   domain.SeverityOK,
			portMsg:   "hardcoded port 8000",
			portFixIn: "PORT=${PORT:-8000} node server.js",
		},
		{
			name:      "loopback host with port",
			cmd:       "gunicorn app:app -b 127.0.0.1:8000",
			portSev:   domain.SeverityError,
			bindSev:   domain.SeverityWarning,
			portMsg:   "hardcoded port 8000",
			portFixIn: "${PORT:-8000}",
		},
		{
			name:    "port read in source",
			cmd:     "node server.js",
			sources: map[string]string{"server.js": "const port = process.env.PORT || 3000;\napp.listen(port, \"0.0.0.0\");\n"},
			portSev: domain.SeverityOK,
			bindSev: domain.SeverityOK,
		},
		{
			name:    "source binds loopback",
			cmd:     "python main.py",
			sources: map[string]string{"main.py": "import os\nport = int(os.environ.get(\"PORT\", 8000))\napp.run(host=\"127.0.0.1\", port=port)\n"},
			portSev: domain.SeverityOK,
			bindSev: domain.SeverityWarning,
		},
		{
			name:    "nothing reads the port",
			cmd:     "node server.js",
			sources: map[string]string{"server.js": "app.listen(3000)"},
			portSev: domain.SeverityError,
			bindSev: domain.SeverityWarning,
			portMsg: "does not reference $PORT",
		},
		{
			name:    "no start command",
			cmd:     "",
			portSev: domain.SeverityError,
			bindSev: domain.SeverityWarning,
			portMsg: "no deploy.startCommand",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{"railpack.json": descriptorWithStart(tt.cmd)}
			for k, v := range tt.sources {
				files[k] = v
			}
			findings := runAfterFileCheck(t, Binding{}, files)

			require.Len(t, findings, 2)
			port, bind := findings[0], findings[1]
			assert.Equal(t, tt.portSev, port.Severity, port.Message)
			assert.Equal(t, tt.bindSev, bind.Severity, bind.Message)
			if tt.portMsg != "" {
				assert.Contains(t, port.Message, tt.portMsg)
			}
			if tt.portFixIn != "" {
				require.True(t, port.HasFix())
				assert.Contains(t, port.SuggestedFix.Command, tt.portFixIn)
				assert.Contains(t, port.SuggestedFix.Command, ".deploy.startCommand")
			}
			if port.Severity == domain.SeverityError {
				assert.Equal(t, domain.KindBindingMisconfigured, port.Kind)
				assert.True(t, port.HasFix())
			}
		})
	}
}

func TestBinding_LoopbackFixRewritesHost(t *testing.T) {
	findings := runAfterFileCheck(t, Binding{}, map[string]string{
		"railpack.json": descriptorWithStart("uvicorn app.main:app --host 127.0.0.1 --port $PORT"),
	})

	require.Len(t, findings, 2)
	bind := findings[1]
	assert.Equal(t, domain.SeverityWarning, bind.Severity)
	require.True(t, bind.HasFix())
	assert.Contains(t, bind.SuggestedFix.Command, "--host 0.0.0.0 --port")
	assert.NotContains(t, bind.SuggestedFix.Command, "127.0.0.1")
}

func TestBinding_BindFixKeepsPortFix(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"separate flags", "uvicorn app.main:app --host 127.0.0.1 --port 8000", "uvicorn app.main:app --host 0.0.0.0 --port ${PORT:-8000}"},
		{"single host:port word", "gunicorn app:app -b 127.0.0.1:8000", "gunicorn app:app -b 0.0.0.0:${PORT:-8000}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := runAfterFileCheck(t, Binding{}, map[string]string{"railpack.json": descriptorWithStart(tt.cmd)})

			require.Len(t, findings, 2)
			bind := findings[1]
			require.Equal(t, domain.SeverityWarning, bind.Severity)
			require.True(t, bind.HasFix())
			assert.Contains(t, bind.SuggestedFix.Command, tt.want)
		})
	}
}

func TestBinding_OtherFlagValuesAreNotTheListenAddress(t *testing.T) {
	findings := runAfterFileCheck(t, Binding{}, map[string]string{
		"railpack.json": descriptorWithStart("node worker.js --redis localhost:6379 --host 0.0.0.0 --port $PORT"),
	})

	require.Len(t, findings, 2)
	assert.Equal(t, domain.SeverityOK, findings[0].Severity, findings[0].Message)
	assert.Equal(t, domain.SeverityOK, findings[1].Severity, findings[1].Message)
}

func TestParseStartCommand_PositionalListenAddress(t *testing.T) {
	args := parseStartCommand("http-server 127.0.0.1:8080", []string{"PORT"})
	assert.Equal(t, "127.0.0.1", args.host)
	assert.Equal(t, "8080", args.literalPort)

	args = parseStartCommand("node worker.js --redis localhost:6379", []string{"PORT"})
	assert.Empty(t, args.host)
	assert.Empty(t, args.literalPort)
}

func TestBinding_CustomPortVariable(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": descriptorWithStart("serve --port $APP_PORT --host 0.0.0.0")})
	in.Config.PortVariables = []string{"APP_PORT"}
	FileSyntax{}.Check(in)

	findings := Binding{}.Check(in)
	require.Len(t, findings, 2)
	assert.Equal(t, domain.SeverityOK, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "$APP_PORT")
}

func TestParseStartCommand_UnparseableFallsBack(t *testing.T) {
	args := parseStartCommand(`uvicorn app --port $PORT --host 0.0.0.0 "unterminated`, []string{"PORT"})
	assert.True(t, args.usesPortVar)
	assert.Equal(t, "0.0.0.0", args.host)
	assert.Empty(t, args.literalPort)
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct{ in, host, port string }{
		{"0.0.0.0:8000", "0.0.0.0", "8000"},
		{"[::]:8080", "[::]", "8080"},
		{"localhost", "localhost", ""},
		{":3000", "", "3000"},
	}
	for _, tt := range tests {
		host, port := splitHostPort(tt.in)
		assert.Equal(t, tt.host, host, tt.in)
		assert.Equal(t, tt.port, port, tt.in)
	}
}

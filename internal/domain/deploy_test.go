package domain_test

import (
	"testing"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeployConfig_CaseInsensitiveKeys(t *testing.T) {
	cfg, err := domain.ParseDeployConfig([]byte(`{
		"build": {"builder": "NIXPACKS"},
		"deploy": {"startCommand": "npm start", "healthCheckPath": "/health", "healthCheckTimeout": 120}
	}`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Deploy.HealthcheckPath)
	assert.Equal(t, "/health", *cfg.Deploy.HealthcheckPath)
	assert.Equal(t, "NIXPACKS", cfg.BuildSystem())

	n, state, _ := cfg.Deploy.HealthcheckTimeoutSeconds()
	assert.Equal(t, domain.TimeoutValid, state)
	assert.Equal(t, 120, n)
}

func TestParseDeployConfig_TypeMismatch(t *testing.T) {
	_, err := domain.ParseDeployConfig([]byte(`{"deploy": {"startCommand": 42}}`))
	assert.Error(t, err)
}

func TestHealthcheckTimeoutSeconds(t *testing.T) {
	tests := []struct {
		raw   string
		state domain.TimeoutState
	}{
		{``, domain.TimeoutAbsent},
		{`null`, domain.TimeoutAbsent},
		{`300`, domain.TimeoutValid},
		{`0`, domain.TimeoutInvalid},
		{`-5`, domain.TimeoutInvalid},
		{`"300"`, domain.TimeoutInvalid},
		{`1.5`, domain.TimeoutInvalid},
	}
	for _, tt := range tests {
		d := domain.DeploySection{HealthcheckTimeout: []byte(tt.raw)}
		_, state, _ := d.HealthcheckTimeoutSeconds()
		assert.Equal(t, tt.state, state, "raw %q", tt.raw)
	}
}

func TestBuildSystem_FallsBackToProvider(t *testing.T) {
	cfg := domain.DeployConfig{Provider: "python"}
	assert.Equal(t, "python", cfg.BuildSystem())
}

func TestStringValues_SortedDottedPaths(t *testing.T) {
	var got []string
	err := domain.StringValues([]byte(`{
		"variables": {"B": "2", "A": "1"},
		"deploy": {"startCommand": "go run .", "healthcheckTimeout": 300},
		"list": ["x"]
	}`), func(path, value string) {
		got = append(got, path+"="+value)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"deploy.startCommand=go run .",
		"list[0]=x",
		"variables.A=1",
		"variables.B=2",
	}, got)
}

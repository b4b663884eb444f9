package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// DeployConfig is the typed view of a Railway build/deploy descriptor
// (railpack.json or railway.json). encoding/json matches keys without regard
// to case, so "healthCheckPath" and "healthcheckPath" land in the same field.
type DeployConfig struct {
	Schema    string            `json:"$schema,omitempty"`
	Provider  string            `json:"provider,omitempty"`
	Build     BuildSection      `json:"build"`
	Deploy    DeploySection     `json:"deploy"`
	Variables map[string]string `json:"variables,omitempty"`
}

// BuildSection holds build-system selection.
type BuildSection struct {
	Builder      string `json:"builder,omitempty"`
	BuildCommand string `json:"buildCommand,omitempty"`
}

// DeploySection holds runtime settings.
type DeploySection struct {
	StartCommand            string          `json:"startCommand,omitempty"`
	HealthcheckPath         *string         `json:"healthcheckPath,omitempty"`
	HealthcheckTimeout      json.RawMessage `json:"healthcheckTimeout,omitempty"`
	RestartPolicyType       string          `json:"restartPolicyType,omitempty"`
	RestartPolicyMaxRetries int             `json:"restartPolicyMaxRetries,omitempty"`
}

// BuildSystem returns the declared builder, preferring build.builder over
// the railpack top-level provider.
func (c *DeployConfig) BuildSystem() string {
	if c.Build.Builder != "" {
		return c.Build.Builder
	}
	return c.Provider
}

// TimeoutState describes what was found in deploy.healthcheckTimeout.
type TimeoutState int

const (
	TimeoutAbsent TimeoutState = iota
	TimeoutInvalid
	TimeoutValid
)

// HealthcheckTimeoutSeconds interprets deploy.healthcheckTimeout. Only a
// positive JSON integer is valid; strings, floats, zero and negatives are
// TimeoutInvalid with a description of what was found.
func (d DeploySection) HealthcheckTimeoutSeconds() (int, TimeoutState, string) {
	raw := bytes.TrimSpace(d.HealthcheckTimeout)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, TimeoutAbsent, ""
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, TimeoutInvalid, fmt.Sprintf("%s is not an integer", raw)
	}
	if n <= 0 {
		return n, TimeoutInvalid, fmt.Sprintf("%d is not positive", n)
	}
	return n, TimeoutValid, ""
}

// ParseDeployConfig decodes a descriptor. Callers are expected to have
// checked syntax already; the error here covers type mismatches such as a
// numeric startCommand.
func ParseDeployConfig(data []byte) (*DeployConfig, error) {
	var cfg DeployConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StringValues walks every string value of a JSON document, calling fn with
// a dotted key path ("deploy.startCommand", "variables.API_URL").
func StringValues(data []byte, fn func(path, value string)) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	walkStrings("", doc, fn)
	return nil
}

func walkStrings(prefix string, v any, fn func(path, value string)) {
	switch t := v.(type) {
	case string:
		fn(prefix, t)
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(t)) {
			walkStrings(joinPath(prefix, k), t[k], fn)
		}
	case []any:
		for i, e := range t {
			walkStrings(fmt.Sprintf("%s[%d]", prefix, i), e, fn)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// Severity grades a single finding.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	// SeveritySkipped marks a check that could not run, e.g. because the
	// descriptor it needs failed to parse. It never affects the run status.
	SeveritySkipped Severity = "skipped"
)

// Rank orders severities from most to least urgent for display.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeveritySkipped:
		return 2
	default:
		return 3
	}
}

// Kind classifies what a finding is about.
type Kind string

const (
	KindOK                   Kind = "OK"
	KindSkipped              Kind = "Skipped"
	KindConfigMissing        Kind = "ConfigMissing"
	KindConfigMalformed      Kind = "ConfigMalformed"
	KindBuildConflict        Kind = "BuildConflict"
	KindBindingMisconfigured Kind = "BindingMisconfigured"
	KindHealthCheckMissing   Kind = "HealthCheckMissing"
	KindReferenceMalformed   Kind = "ReferenceMalformed"
	KindInternalError        Kind = "InternalError"
)

// Label renders the kind in lower-case words ("BuildConflict" -> "build conflict").
func (k Kind) Label() string {
	return strings.ToLower(strings.Join(camelcase.Split(string(k)), " "))
}

// Fix is a suggested remediation. Command is a shell command that can be
// pasted into the remediation script; Description explains a manual edit.
// At least one of the two is set.
type Fix struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsZero reports whether the fix carries nothing actionable.
func (f Fix) IsZero() bool { return f.Command == "" && f.Description == "" }

// Finding is one diagnostic produced by a checker.
type Finding struct {
	Severity     Severity `json:"severity"`
	Kind         Kind     `json:"kind"`
	Checker      string   `json:"checker_name"`
	Service      string   `json:"service,omitempty"`
	File         string   `json:"file,omitempty"`
	Message      string   `json:"message"`
	SuggestedFix *Fix     `json:"suggested_fix,omitempty"`
}

// HasFix reports whether the finding carries a usable suggested fix.
func (f Finding) HasFix() bool { return f.SuggestedFix != nil && !f.SuggestedFix.IsZero() }

// CheckerResult is the ordered output of one checker for one target.
type CheckerResult struct {
	Checker  string    `json:"checker_name"`
	Findings []Finding `json:"findings"`
}

// Checker names, in run order.
const (
	CheckerFileSyntax    = "file & syntax"
	CheckerBuildConflict = "build-system conflict"
	CheckerBinding       = "runtime binding"
	CheckerHealthCheck   = "health check"
	CheckerReference     = "reference variables"
	CheckerConfiguration = "validator configuration"
	CheckerInternal      = "validator internal error"
)

package domain

import "time"

// Status is the overall outcome of a validation run.
type Status string

const (
	StatusPass             Status = "pass"
	StatusPassWithWarnings Status = "pass_with_warnings"
	StatusFail             Status = "fail"
)

// Counts tallies findings per severity.
type Counts struct {
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
}

// Report aggregates every checker result of one run.
type Report struct {
	Status   Status          `json:"status"`
	Counts   Counts          `json:"counts"`
	Findings []Finding       `json:"findings"`
	Results  []CheckerResult `json:"results"`
	Root     string          `json:"root"`
	Revision string          `json:"revision,omitempty"`
}

// NewReport builds a report from checker results, preserving their order.
// Status and counts depend only on finding severities.
func NewReport(results []CheckerResult) *Report {
	r := &Report{Results: results, Findings: []Finding{}}
	for _, res := range results {
		r.Findings = append(r.Findings, res.Findings...)
	}
	r.Counts = CountFindings(r.Findings)
	r.Status = StatusFor(r.Counts)
	return r
}

// CountFindings tallies severities.
func CountFindings(findings []Finding) Counts {
	var c Counts
	for _, f := range findings {
		switch f.Severity {
		case SeverityOK:
			c.OK++
		case SeverityWarning:
			c.Warning++
		case SeverityError:
			c.Error++
		case SeveritySkipped:
			c.Skipped++
		}
	}
	return c
}

// StatusFor derives the run status from severity counts.
func StatusFor(c Counts) Status {
	switch {
	case c.Error > 0:
		return StatusFail
	case c.Warning > 0:
		return StatusPassWithWarnings
	default:
		return StatusPass
	}
}

// ExitCode is 1 if and only if the report holds an error finding.
func (r *Report) ExitCode() int {
	if r.Counts.Error > 0 {
		return 1
	}
	return 0
}

// Fixable returns the findings that carry a suggested fix, in report order.
func (r *Report) Fixable() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.HasFix() {
			out = append(out, f)
		}
	}
	return out
}

// RunEntry is one line of the optional on-disk run log.
type RunEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Root      string    `json:"root"`
	Revision  string    `json:"revision,omitempty"`
	Service   string    `json:"service,omitempty"`
	Status    Status    `json:"status"`
	Counts    Counts    `json:"counts"`
}

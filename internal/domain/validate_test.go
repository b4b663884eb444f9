package domain_test

import (
	"testing"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finding(sev domain.Severity) domain.Finding {
	return domain.Finding{Severity: sev, Kind: domain.KindOK, Checker: "test", Message: string(sev)}
}

func TestNewReport_StatusAndExitCode(t *testing.T) {
	tests := []struct {
		name     string
		findings []domain.Finding
		status   domain.Status
		exit     int
	}{
		{"no findings", nil, domain.StatusPass, 0},
		{"only ok", []domain.Finding{finding(domain.SeverityOK)}, domain.StatusPass, 0},
		{"only warnings", []domain.Finding{finding(domain.SeverityWarning), finding(domain.SeverityOK)}, domain.StatusPassWithWarnings, 0},
		{"skipped does not change status", []domain.Finding{finding(domain.SeveritySkipped)}, domain.StatusPass, 0},
		{"one error", []domain.Finding{finding(domain.SeverityWarning), finding(domain.SeverityError)}, domain.StatusFail, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.NewReport([]domain.CheckerResult{{Checker: "test", Findings: tt.findings}})
			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.exit, r.ExitCode())
		})
	}
}

func TestNewReport_PreservesOrderAndCounts(t *testing.T) {
	results := []domain.CheckerResult{
		{Checker: "a", Findings: []domain.Finding{finding(domain.SeverityError), finding(domain.SeverityOK)}},
		{Checker: "b", Findings: []domain.Finding{finding(domain.SeveritySkipped)}},
		{Checker: "c", Findings: []domain.Finding{finding(domain.SeverityWarning), finding(domain.SeverityOK)}},
	}
	r := domain.NewReport(results)

	require.Len(t, r.Findings, 5)
	assert.Equal(t, domain.SeverityError, r.Findings[0].Severity)
	assert.Equal(t, domain.SeveritySkipped, r.Findings[2].Severity)
	assert.Equal(t, domain.Counts{OK: 2, Warning: 1, Error: 1, Skipped: 1}, r.Counts)
	assert.Len(t, r.Results, 3)
}

func TestNewReport_EmptyFindingsNotNil(t *testing.T) {
	r := domain.NewReport(nil)
	assert.NotNil(t, r.Findings)
	assert.Equal(t, 0, r.ExitCode())
}

func TestReport_Fixable(t *testing.T) {
	withFix := finding(domain.SeverityError)
	withFix.SuggestedFix = &domain.Fix{Command: "true"}
	r := domain.NewReport([]domain.CheckerResult{{Findings: []domain.Finding{finding(domain.SeverityError), withFix}}})

	fixable := r.Fixable()
	require.Len(t, fixable, 1)
	assert.Equal(t, "true", fixable[0].SuggestedFix.Command)
}

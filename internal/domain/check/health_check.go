package check

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/remediation"
)

// HealthCheck confirms the descriptor declares a health-check path and a
// positive timeout, and that some source file mentions the path.
type HealthCheck struct{}

func (HealthCheck) Name() string            { return domain.CheckerHealthCheck }
func (HealthCheck) NeedsParsedConfig() bool { return true }
func (HealthCheck) Description() string {
	return "health-check path and timeout are declared and the endpoint exists in source"
}

func (c HealthCheck) Check(in *Input) []domain.Finding {
	d := in.Descriptors.Primary()
	deploy := d.Config.Deploy
	defaults := in.Config.HealthCheck
	var findings []domain.Finding

	pathKey := deployKey(d.Raw, "healthcheckPath")
	path := ""
	if deploy.HealthcheckPath != nil {
		path = strings.TrimSpace(*deploy.HealthcheckPath)
	}
	switch {
	case path == "":
		f := newFinding(c.Name(), domain.SeverityError, domain.KindHealthCheckMissing, d.Path,
			fmt.Sprintf("deploy.%s is not set; proposing %s", pathKey, defaults.DefaultPath))
		findings = append(findings, withFix(f,
			remediation.JQSet(d.Path, ".deploy."+pathKey, defaults.DefaultPath, false),
			fmt.Sprintf("set deploy.%s to %q", pathKey, defaults.DefaultPath)))
	case !strings.HasPrefix(path, "/"):
		f := newFinding(c.Name(), domain.SeverityWarning, domain.KindHealthCheckMissing, d.Path,
			fmt.Sprintf("deploy.%s %q should start with /", pathKey, path))
		findings = append(findings, withFix(f,
			remediation.JQSet(d.Path, ".deploy."+pathKey, "/"+path, false),
			fmt.Sprintf("set deploy.%s to %q", pathKey, "/"+path)))
	default:
		findings = append(findings, newFinding(c.Name(), domain.SeverityOK, domain.KindOK, d.Path,
			fmt.Sprintf("health-check path %s declared", path)))
	}

	timeoutKey := deployKey(d.Raw, "healthcheckTimeout")
	proposed := strconv.Itoa(defaults.DefaultTimeout)
	seconds, state, detail := deploy.HealthcheckTimeoutSeconds()
	switch state {
	case domain.TimeoutAbsent:
		f := newFinding(c.Name(), domain.SeverityError, domain.KindHealthCheckMissing, d.Path,
			fmt.Sprintf("deploy.%s is not set; proposing %s seconds", timeoutKey, proposed))
		findings = append(findings, withFix(f,
			remediation.JQSet(d.Path, ".deploy."+timeoutKey, proposed, true),
			fmt.Sprintf("set deploy.%s to %s", timeoutKey, proposed)))
	case domain.TimeoutInvalid:
		f := newFinding(c.Name(), domain.SeverityError, domain.KindHealthCheckMissing, d.Path,
			fmt.Sprintf("deploy.%s must be a positive integer (%s); proposing %s seconds", timeoutKey, detail, proposed))
		findings = append(findings, withFix(f,
			remediation.JQSet(d.Path, ".deploy."+timeoutKey, proposed, true),
			fmt.Sprintf("set deploy.%s to %s", timeoutKey, proposed)))
	default:
		findings = append(findings, newFinding(c.Name(), domain.SeverityOK, domain.KindOK, d.Path,
			fmt.Sprintf("health-check timeout %ds declared", seconds)))
	}

	if path != "" {
		findings = append(findings, c.checkEndpoint(in, "/"+strings.TrimPrefix(path, "/")))
	}
	return findings
}

// checkEndpoint looks for the path as a string literal in source. Routes
// registered dynamically are invisible here, hence a warning at most.
func (c HealthCheck) checkEndpoint(in *Input, path string) domain.Finding {
	q := "[\"'`]"
	expr := regexp.QuoteMeta(path)
	if base := strings.TrimSuffix(path, "/"); base != "" {
		expr = regexp.QuoteMeta(base) + `/?`
	}
	route := regexp.MustCompile(q + expr + q)
	m, searched, err := searchSources(in, route)
	switch {
	case err != nil:
		return newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, "",
			fmt.Sprintf("endpoint %s not verified: %v", path, err))
	case !searched:
		return newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, "",
			fmt.Sprintf("endpoint %s not verified: no source files matched", path))
	case m == nil:
		f := newFinding(c.Name(), domain.SeverityWarning, domain.KindHealthCheckMissing, "",
			fmt.Sprintf("no source file mentions %s; the endpoint may be missing or registered dynamically", path))
		return withFix(f, "", fmt.Sprintf("serve GET %s returning 200 once the service is ready", path))
	default:
		return newFinding(c.Name(), domain.SeverityOK, domain.KindOK, m.File,
			fmt.Sprintf("endpoint %s found in %s", path, m.File))
	}
}

// deployKey returns the spelling the descriptor already uses for a deploy
// key (healthCheckPath vs healthcheckPath), so a fix does not add a
// duplicate. Falls back to the sibling health-check key's style, then to
// name itself.
func deployKey(raw []byte, name string) string {
	var doc struct {
		Deploy map[string]json.RawMessage `json:"deploy"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return name
	}
	camel := false
	for k := range doc.Deploy {
		if strings.EqualFold(k, name) {
			return k
		}
		if strings.HasPrefix(k, "healthCheck") {
			camel = true
		}
	}
	if camel {
		return strings.Replace(name, "healthcheck", "healthCheck", 1)
	}
	return name
}

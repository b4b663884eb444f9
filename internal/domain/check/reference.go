package check

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// Reference scans descriptor values and env declaration files for
// cross-service references. Referencing another service's port is an error
// (ports are per-deploy; domains are stable), as is a reference that lacks
// the template delimiters. The template grammar comes from configuration.
type Reference struct{}

func (Reference) Name() string { return domain.CheckerReference }

// NeedsParsedConfig is false: env files are scanned even when the
// descriptor is broken. Descriptor values are skipped per file.
func (Reference) NeedsParsedConfig() bool { return false }
func (Reference) Description() string {
	return "cross-service references point at domains and use the template syntax"
}

type refTally struct {
	domains int
	others  int
}

func (c Reference) Check(in *Input) []domain.Finding {
	var findings []domain.Finding
	var tally refTally
	scanned := 0

	for _, d := range in.Descriptors.All() {
		if !d.Parsed() {
			reason := fmt.Sprintf("reference scan of %s skipped due to parse error", d.Path)
			if errors.Is(d.Err, ErrDescriptorMissing) {
				reason = fmt.Sprintf("reference scan of %s skipped: file is missing", d.Path)
			}
			f := newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, d.Path, reason)
			findings = append(findings, f)
			continue
		}
		err := domain.StringValues(d.Raw, func(key, value string) {
			findings = append(findings, c.scan(in, &tally, d.Path, key, value)...)
		})
		if err != nil {
			findings = append(findings, newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, d.Path,
				fmt.Sprintf("reference scan of %s failed: %v", d.Path, err)))
			continue
		}
		scanned++
	}

	envFiles, err := in.Workspace.Glob(in.Config.EnvGlobs)
	if err != nil {
		findings = append(findings, newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, "",
			fmt.Sprintf("env files not scanned: %v", err)))
	}
	for _, path := range envFiles {
		data, err := in.Workspace.ReadFile(path)
		if err != nil {
			findings = append(findings, newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, path,
				fmt.Sprintf("cannot read %s: %v", path, err)))
			continue
		}
		scanned++
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), maxSourceSize)
		for n := 1; sc.Scan(); n++ {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			findings = append(findings, c.scan(in, &tally, path, fmt.Sprintf("line %d", n), line)...)
		}
	}

	// Nothing was read, so there is nothing to vouch for.
	if scanned == 0 {
		return findings
	}
	if hasSeverity(findings, domain.SeverityError) && tally.domains == 0 {
		return findings
	}
	msg := "no cross-service references found"
	switch {
	case tally.domains > 0:
		msg = fmt.Sprintf("%d well-formed domain reference(s)", tally.domains)
		if tally.others > 0 {
			msg += fmt.Sprintf(", %d other reference(s)", tally.others)
		}
	case tally.others > 0:
		msg = fmt.Sprintf("%d well-formed reference(s), none to domains", tally.others)
	}
	return append(findings, newFinding(c.Name(), domain.SeverityOK, domain.KindOK, "", msg))
}

// scan reports the references in one value. where locates it for messages.
func (c Reference) scan(in *Input, tally *refTally, file, where, text string) []domain.Finding {
	var findings []domain.Finding
	p := in.Patterns

	good := p.Reference.FindAllStringSubmatchIndex(text, -1)
	for _, m := range good {
		ref := text[m[0]:m[1]]
		service, variable := group(text, m, 1), group(text, m, 2)
		switch {
		case p.Port.MatchString(variable):
			replacement := strings.Replace(ref, variable, "RAILWAY_PRIVATE_DOMAIN", 1)
			f := newFinding(c.Name(), domain.SeverityError, domain.KindReferenceMalformed, file,
				fmt.Sprintf("%s (%s): %s references %s's port; ports are assigned per deploy, reference its domain instead",
					file, where, ref, service))
			findings = append(findings, withFix(f, "",
				fmt.Sprintf("in %s (%s) replace %s with %s", file, where, ref, replacement)))
		case p.Domain.MatchString(variable):
			tally.domains++
		default:
			tally.others++
		}
	}

	for _, loc := range p.Candidate.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(loc, good) {
			continue
		}
		ref := text[loc[0]:loc[1]]
		service, variable := group(text, loc, 1), group(text, loc, 2)
		f := newFinding(c.Name(), domain.SeverityError, domain.KindReferenceMalformed, file,
			fmt.Sprintf("%s (%s): malformed cross-service reference %q", file, where, ref))
		findings = append(findings, withFix(f, "",
			fmt.Sprintf("in %s (%s) write ${{%s.%s}}", file, where, service, variable)))
	}
	return findings
}

// group returns submatch i of a FindAllStringSubmatchIndex entry, or ""
// when the group did not participate.
func group(text string, loc []int, i int) string {
	if 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

func hasSeverity(findings []domain.Finding, sev domain.Severity) bool {
	for _, f := range findings {
		if f.Severity == sev {
			return true
		}
	}
	return false
}

package check

import (
	"fmt"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/remediation"
)

// BuildConflict flags every competing build descriptor next to the
// canonical one. It always recommends keeping the canonical descriptor and
// never guesses which competitor was intended. File contents are not read.
type BuildConflict struct{}

func (BuildConflict) Name() string            { return domain.CheckerBuildConflict }
func (BuildConflict) NeedsParsedConfig() bool { return false }
func (BuildConflict) Description() string {
	return "only the canonical build descriptor is present"
}

func (c BuildConflict) Check(in *Input) []domain.Finding {
	canonical := in.Config.CanonicalDescriptor
	var findings []domain.Finding

	for _, name := range in.Config.CompetingDescriptors {
		if !in.Workspace.Exists(name) {
			continue
		}
		f := newFinding(c.Name(), domain.SeverityError, domain.KindBuildConflict, name,
			fmt.Sprintf("competing build descriptor %s makes the build system ambiguous; keep %s only", name, canonical))
		disabled := name + ".disabled"
		findings = append(findings, withFix(f,
			remediation.Command("mv", "--", name, disabled),
			fmt.Sprintf("remove or rename %s", name)))
	}
	if len(findings) > 0 {
		return findings
	}

	if !in.Workspace.Exists(canonical) {
		return []domain.Finding{newFinding(c.Name(), domain.SeveritySkipped, domain.KindSkipped, canonical,
			fmt.Sprintf("no build descriptor present; %s is missing", canonical))}
	}
	return []domain.Finding{newFinding(c.Name(), domain.SeverityOK, domain.KindOK, canonical,
		fmt.Sprintf("%s is the only build descriptor", canonical))}
}

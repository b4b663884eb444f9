package check

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// Checker inspects one scan target and reports findings. Checkers never
// return errors: anything they cannot analyse becomes a finding.
type Checker interface {
	Name() string
	// NeedsParsedConfig reports whether the checker reads typed descriptor
	// fields and must be skipped when the primary descriptor is unusable.
	NeedsParsedConfig() bool
	Description() string
	Check(in *Input) []domain.Finding
}

// Input is everything a checker may look at for one target.
type Input struct {
	Context     domain.RepositoryContext
	Workspace   domain.Workspace
	Config      domain.ProjectConfig
	Patterns    domain.Patterns
	Descriptors *Descriptors
}

// Default returns the checkers in run order. File & syntax must stay first:
// it fills Input.Descriptors for everyone after it.
func Default() []Checker {
	return []Checker{
		FileSyntax{},
		BuildConflict{},
		Binding{},
		HealthCheck{},
		Reference{},
	}
}

// ErrDescriptorMissing marks a descriptor that does not exist on disk.
var ErrDescriptorMissing = errors.New("descriptor missing")

// Descriptor is one expected descriptor file and what came of parsing it.
type Descriptor struct {
	Path   string
	Raw    []byte
	Config *domain.DeployConfig
	Err    error
}

// Parsed reports whether the descriptor decoded into a DeployConfig.
func (d *Descriptor) Parsed() bool { return d != nil && d.Err == nil && d.Config != nil }

// Descriptors is the ordered set of descriptors of one target.
type Descriptors struct {
	items []*Descriptor
}

// NewDescriptors creates an empty set.
func NewDescriptors() *Descriptors { return &Descriptors{} }

func (s *Descriptors) add(d *Descriptor) { s.items = append(s.items, d) }

// All returns the descriptors in config_files order.
func (s *Descriptors) All() []*Descriptor { return s.items }

// Primary returns the first descriptor, or nil before the file checker ran.
func (s *Descriptors) Primary() *Descriptor {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// SkipReason explains why the primary descriptor cannot be used, or ""
// when it parsed.
func (s *Descriptors) SkipReason() string {
	p := s.Primary()
	switch {
	case p == nil:
		return "no descriptor configured"
	case p.Parsed():
		return ""
	case errors.Is(p.Err, ErrDescriptorMissing):
		return fmt.Sprintf("skipped: %s is missing", p.Path)
	default:
		return fmt.Sprintf("skipped due to parse error in %s", p.Path)
	}
}

// Skipped builds the finding reported in place of a checker that needs a
// parsed descriptor.
func Skipped(c Checker, reason string) domain.Finding {
	return domain.Finding{
		Severity: domain.SeveritySkipped,
		Kind:     domain.KindSkipped,
		Checker:  c.Name(),
		Message:  reason,
	}
}

func newFinding(checker string, sev domain.Severity, kind domain.Kind, file, msg string) domain.Finding {
	return domain.Finding{Severity: sev, Kind: kind, Checker: checker, File: file, Message: msg}
}

func withFix(f domain.Finding, command, description string) domain.Finding {
	f.SuggestedFix = &domain.Fix{Command: command, Description: description}
	return f
}

const maxSourceSize = 1 << 20

// sourceMatch is the first source file whose content matches re.
type sourceMatch struct {
	File string
	Text string
}

// searchSources greps the configured source globs. ok is false when no
// source file matched the globs at all.
func searchSources(in *Input, re *regexp.Regexp) (m *sourceMatch, ok bool, err error) {
	files, err := in.Workspace.Glob(in.Config.SourceGlobs)
	if err != nil {
		return nil, false, err
	}
	if len(files) == 0 {
		return nil, false, nil
	}
	for _, f := range files {
		data, err := in.Workspace.ReadFile(f)
		if err != nil || len(data) > maxSourceSize {
			continue
		}
		if loc := re.FindIndex(data); loc != nil {
			return &sourceMatch{File: f, Text: string(data[loc[0]:loc[1]])}, true, nil
		}
	}
	return nil, true, nil
}

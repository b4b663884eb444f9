package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidConfig wraps every ProjectConfig validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownService is returned when --service names a service that is not
// declared in the configuration.
var ErrUnknownService = errors.New("unknown service")

// ProjectConfig holds tool configuration loaded from .railcheck.yaml.
type ProjectConfig struct {
	CanonicalDescriptor       string                   `yaml:"canonical_descriptor"        json:"canonical_descriptor"`
	CompetingDescriptors      []string                 `yaml:"competing_descriptors"       json:"competing_descriptors"`
	ConfigFiles               []string                 `yaml:"config_files"                json:"config_files"`
	SourceGlobs               []string                 `yaml:"source_globs"                json:"source_globs"`
	EnvGlobs                  []string                 `yaml:"env_globs"                   json:"env_globs"`
	ExcludeDirs               []string                 `yaml:"exclude_dirs"                json:"exclude_dirs"`
	PortVariables             []string                 `yaml:"port_variables"              json:"port_variables"`
	ReferencePattern          string                   `yaml:"reference_pattern"           json:"reference_pattern"`
	CandidateReferencePattern string                   `yaml:"candidate_reference_pattern" json:"candidate_reference_pattern"`
	PortReferencePattern      string                   `yaml:"port_reference_pattern"      json:"port_reference_pattern"`
	DomainReferencePattern    string                   `yaml:"domain_reference_pattern"    json:"domain_reference_pattern"`
	HealthCheck               HealthCheckDefaults      `yaml:"health_check"                json:"health_check"`
	RemediationPath           string                   `yaml:"remediation_path"            json:"remediation_path"`
	RunLog                    string                   `yaml:"run_log"                     json:"run_log,omitempty"`
	Services                  map[string]ServiceConfig `yaml:"services"                    json:"services,omitempty"`
}

// HealthCheckDefaults are the values proposed when a descriptor omits its
// health-check settings.
type HealthCheckDefaults struct {
	DefaultPath    string `yaml:"default_path"    json:"default_path"`
	DefaultTimeout int    `yaml:"default_timeout" json:"default_timeout"`
}

// ServiceConfig scopes validation to one service of a monorepo.
type ServiceConfig struct {
	Root        string   `yaml:"root"         json:"root"`
	ConfigFiles []string `yaml:"config_files" json:"config_files,omitempty"`
}

// Default values. Health-check defaults follow Railway's documented
// /health + 300s convention.
const (
	DefaultCanonicalDescriptor       = "railpack.json"
	DefaultReferencePattern          = `\$\{\{\s*([A-Za-z0-9_-]+)\.([A-Za-z0-9_]+)\s*\}\}`
	DefaultCandidateReferencePattern = `\$?\{{0,2}\s*\b([A-Za-z][A-Za-z0-9_-]*)\.([A-Z][A-Z0-9_]*)\b\s*\}{0,2}`
	DefaultPortReferencePattern      = `(^|_)PORT$`
	DefaultDomainReferencePattern    = `(^|_)(DOMAIN|HOST|URL)$`
	DefaultHealthPath                = "/health"
	DefaultHealthTimeout             = 300
	DefaultRemediationPath           = "auto-fix.sh"
)

// DefaultConfig returns the configuration used when no .railcheck.yaml exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		CanonicalDescriptor: DefaultCanonicalDescriptor,
		CompetingDescriptors: []string{
			"railway.json", "railway.toml", "nixpacks.toml", "nixpacks.json", "Dockerfile",
		},
		SourceGlobs: []string{
			"**/*.py", "**/*.js", "**/*.mjs", "**/*.cjs", "**/*.ts", "**/*.go",
		},
		EnvGlobs: []string{".env", ".env.*", "**/*.env"},
		ExcludeDirs: []string{
			"node_modules", ".git", "vendor", "dist", "build", ".venv", "__pycache__",
		},
		PortVariables:             []string{"PORT"},
		ReferencePattern:          DefaultReferencePattern,
		CandidateReferencePattern: DefaultCandidateReferencePattern,
		PortReferencePattern:      DefaultPortReferencePattern,
		DomainReferencePattern:    DefaultDomainReferencePattern,
		HealthCheck: HealthCheckDefaults{
			DefaultPath:    DefaultHealthPath,
			DefaultTimeout: DefaultHealthTimeout,
		},
		RemediationPath: DefaultRemediationPath,
	}
}

// WithDefaults fills every unset field from DefaultConfig. Explicit values
// always win.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.CanonicalDescriptor == "" {
		c.CanonicalDescriptor = d.CanonicalDescriptor
	}
	if c.CompetingDescriptors == nil {
		for _, name := range d.CompetingDescriptors {
			if name != c.CanonicalDescriptor {
				c.CompetingDescriptors = append(c.CompetingDescriptors, name)
			}
		}
	}
	if c.SourceGlobs == nil {
		c.SourceGlobs = d.SourceGlobs
	}
	if c.EnvGlobs == nil {
		c.EnvGlobs = d.EnvGlobs
	}
	if c.ExcludeDirs == nil {
		c.ExcludeDirs = d.ExcludeDirs
	}
	if len(c.PortVariables) == 0 {
		c.PortVariables = d.PortVariables
	}
	if c.ReferencePattern == "" {
		c.ReferencePattern = d.ReferencePattern
	}
	if c.CandidateReferencePattern == "" {
		c.CandidateReferencePattern = d.CandidateReferencePattern
	}
	if c.PortReferencePattern == "" {
		c.PortReferencePattern = d.PortReferencePattern
	}
	if c.DomainReferencePattern == "" {
		c.DomainReferencePattern = d.DomainReferencePattern
	}
	if c.HealthCheck.DefaultPath == "" {
		c.HealthCheck.DefaultPath = d.HealthCheck.DefaultPath
	}
	if c.HealthCheck.DefaultTimeout == 0 {
		c.HealthCheck.DefaultTimeout = d.HealthCheck.DefaultTimeout
	}
	if c.RemediationPath == "" {
		c.RemediationPath = d.RemediationPath
	}
	return c
}

// DescriptorFiles returns the expected descriptor files for the root target:
// config_files if set, otherwise the canonical descriptor alone.
func (c ProjectConfig) DescriptorFiles() []string {
	if len(c.ConfigFiles) > 0 {
		return c.ConfigFiles
	}
	return []string{c.CanonicalDescriptor}
}

// ServiceDescriptorFiles returns the expected descriptor files of a service,
// relative to the service root.
func (c ProjectConfig) ServiceDescriptorFiles(name string) ([]string, error) {
	svc, ok := c.Services[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownService, name)
	}
	if len(svc.ConfigFiles) > 0 {
		return svc.ConfigFiles, nil
	}
	return []string{c.CanonicalDescriptor}, nil
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. descriptor names are plain file names
	if strings.ContainsAny(c.CanonicalDescriptor, `/\`) {
		return fmt.Errorf("%w: canonical_descriptor %q must be a file name, not a path", ErrInvalidConfig, c.CanonicalDescriptor)
	}
	for _, name := range c.CompetingDescriptors {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: competing_descriptors entry %q must be a file name", ErrInvalidConfig, name)
		}
		if name == c.CanonicalDescriptor {
			return fmt.Errorf("%w: %q is both canonical and competing", ErrInvalidConfig, name)
		}
	}

	// 2. globs must be well-formed
	for _, g := range append(append([]string{}, c.SourceGlobs...), c.EnvGlobs...) {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("%w: bad glob %q", ErrInvalidConfig, g)
		}
	}

	// 3. patterns must compile; the reference patterns need two groups
	patterns := map[string]struct {
		expr   string
		groups int
	}{
		"reference_pattern":           {c.ReferencePattern, 2},
		"candidate_reference_pattern": {c.CandidateReferencePattern, 2},
		"port_reference_pattern":      {c.PortReferencePattern, 0},
		"domain_reference_pattern":    {c.DomainReferencePattern, 0},
	}
	for name, p := range patterns {
		if p.expr == "" {
			continue
		}
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
		if re.NumSubexp() < p.groups {
			return fmt.Errorf("%w: %s must capture service and variable (%d groups, got %d)",
				ErrInvalidConfig, name, p.groups, re.NumSubexp())
		}
	}

	// 4. port variable names are shell identifiers
	for _, v := range c.PortVariables {
		if !shellIdent.MatchString(v) {
			return fmt.Errorf("%w: port_variables entry %q is not a valid variable name", ErrInvalidConfig, v)
		}
	}

	// 5. health-check defaults
	if c.HealthCheck.DefaultPath != "" && !strings.HasPrefix(c.HealthCheck.DefaultPath, "/") {
		return fmt.Errorf("%w: health_check.default_path must start with /", ErrInvalidConfig)
	}
	if c.HealthCheck.DefaultTimeout < 0 {
		return fmt.Errorf("%w: health_check.default_timeout must be > 0 (got %d)", ErrInvalidConfig, c.HealthCheck.DefaultTimeout)
	}

	// 6. services
	for name, svc := range c.Services {
		if name == "" {
			return fmt.Errorf("%w: service with empty name", ErrInvalidConfig)
		}
		if svc.Root == "" {
			return fmt.Errorf("%w: services.%s.root must not be empty", ErrInvalidConfig, name)
		}
	}

	return nil
}

var shellIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Patterns is the compiled form of the reference regular expressions.
type Patterns struct {
	Reference *regexp.Regexp
	Candidate *regexp.Regexp
	Port      *regexp.Regexp
	Domain    *regexp.Regexp
}

// CompilePatterns compiles the configured reference patterns. Validate
// should have been called first; this returns the first compile error.
func (c ProjectConfig) CompilePatterns() (Patterns, error) {
	var p Patterns
	var err error
	if p.Reference, err = regexp.Compile(c.ReferencePattern); err != nil {
		return p, fmt.Errorf("reference_pattern: %w", err)
	}
	if p.Candidate, err = regexp.Compile(c.CandidateReferencePattern); err != nil {
		return p, fmt.Errorf("candidate_reference_pattern: %w", err)
	}
	if p.Port, err = regexp.Compile(c.PortReferencePattern); err != nil {
		return p, fmt.Errorf("port_reference_pattern: %w", err)
	}
	if p.Domain, err = regexp.Compile(c.DomainReferencePattern); err != nil {
		return p, fmt.Errorf("domain_reference_pattern: %w", err)
	}
	return p, nil
}

package domain

import "path/filepath"

// RepositoryContext describes one scan target. It is built once per target
// and only exposes copies, so checkers cannot mutate it.
type RepositoryContext struct {
	root        string
	service     string
	configFiles []string
	fix         bool
}

// NewRepositoryContext creates a context rooted at root. configFiles are
// slash-separated paths relative to root; the first one is the primary
// descriptor.
func NewRepositoryContext(root, service string, configFiles []string, fix bool) RepositoryContext {
	files := make([]string, len(configFiles))
	for i, f := range configFiles {
		files[i] = filepath.ToSlash(filepath.Clean(f))
	}
	return RepositoryContext{root: root, service: service, configFiles: files, fix: fix}
}

// Root is the directory every relative path resolves against.
func (c RepositoryContext) Root() string { return c.root }

// Service is the explicit service name, empty for the repository root target.
func (c RepositoryContext) Service() string { return c.service }

// Fix reports whether a remediation script was requested.
func (c RepositoryContext) Fix() bool { return c.fix }

// ConfigFiles returns a copy of the expected descriptor paths.
func (c RepositoryContext) ConfigFiles() []string {
	out := make([]string, len(c.configFiles))
	copy(out, c.configFiles)
	return out
}

// PrimaryConfig returns the first expected descriptor, or "" if none.
func (c RepositoryContext) PrimaryConfig() string {
	if len(c.configFiles) == 0 {
		return ""
	}
	return c.configFiles[0]
}

// Label names the target for display: the service name or ".".
func (c RepositoryContext) Label() string {
	if c.service == "" {
		return "."
	}
	return c.service
}

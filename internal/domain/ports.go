package domain

// Workspace gives checkers read-only access to one scan target. Paths are
// slash-separated and relative to the target root.
type Workspace interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	// Glob returns the sorted, de-duplicated files matching any pattern,
	// skipping excluded directories.
	Glob(patterns []string) ([]string, error)
}

// WorkspaceOpener opens a Workspace rooted at an absolute directory.
type WorkspaceOpener interface {
	Open(root string, excludeDirs []string) Workspace
}

// ConfigLoader loads tool configuration for a repository.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// ScriptWriter persists a rendered remediation script and returns where it
// was written. It must never execute the script.
type ScriptWriter interface {
	Write(path string, script []byte) (string, error)
}

// RunLog appends one entry per validation run.
type RunLog interface {
	Append(path string, entry RunEntry) error
}

// RevisionSource reports the VCS revision of a repository, if any.
type RevisionSource interface {
	CommitHash(projectPath string) (string, error)
}

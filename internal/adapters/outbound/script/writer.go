package script

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter implements domain.ScriptWriter. Scripts are made executable for
// the user to run after review; nothing here executes them.
type FileWriter struct{}

func New() *FileWriter {
	return &FileWriter{}
}

func (w *FileWriter) Write(path string, script []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("creating script directory: %w", err)
	}
	if err := os.WriteFile(abs, script, 0755); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(abs), err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(abs, 0755); err != nil {
		return "", err
	}
	return abs, nil
}

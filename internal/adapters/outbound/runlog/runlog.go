package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// FileLog implements domain.RunLog as a JSON array on disk.
type FileLog struct{}

func New() *FileLog {
	return &FileLog{}
}

func (l *FileLog) Append(path string, entry domain.RunEntry) error {
	entries, err := l.Load(path)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Load returns the recorded runs, oldest first. A missing file is an empty log.
func (l *FileLog) Load(path string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing run log %s: %w", path, err)
	}

	return entries, nil
}

package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_WritesExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts", "auto-fix.sh")
	body := []byte("#!/usr/bin/env bash\necho hi\n")

	written, err := script.New().Write(path, body)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm()&0755)
}

func TestFileWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto-fix.sh")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	_, err := script.New().Write(path, []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100, "owner execute bit set")
}

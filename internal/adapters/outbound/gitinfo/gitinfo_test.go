package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/gitinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "railpack.json"), []byte(`{}`), 0644))
	_, err = wt.Add("railpack.json")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestGitInfo_CommitHash_ReturnsHash(t *testing.T) {
	dir := t.TempDir()
	want := commitRepo(t, dir)

	hash, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
	assert.Equal(t, want, hash)
}

func TestGitInfo_CommitHash_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	want := commitRepo(t, dir)
	sub := filepath.Join(dir, "services", "api")
	require.NoError(t, os.MkdirAll(sub, 0755))

	hash, err := gitinfo.New().CommitHash(sub)
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestGitInfo_CommitHash_NoCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = gitinfo.New().CommitHash(dir)
	assert.Error(t, err)
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := gitinfo.New().CommitHash(dir)
	assert.Error(t, err)
}

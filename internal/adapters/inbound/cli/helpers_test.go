package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeycoder/railcheck/internal/adapters/inbound/cli"
)

// run executes the root command and returns stdout, stderr and the exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), cli.ExitCode(err)
}

func fixture(name string) string {
	return filepath.Join("..", "..", "..", "..", "testdata", "railway", name)
}

func copyFixture(t *testing.T, name string) string {
	t.Helper()
	dst := t.TempDir()
	require.NoError(t, os.CopyFS(dst, os.DirFS(fixture(name))))
	return dst
}

package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrato-dev/extrato/internal/categories"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "extrato-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "extrato")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/extrato")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runExtrato(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initRepo creates a data directory for user 1 and returns its path.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runExtrato(t, "init", dir)
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initRepo(t)

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"extrato.yaml", "extrato.db", "categories.csv"} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runExtrato(t, "init", dir, "--user", "7")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "extrato.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "id: 7")
	assert.Contains(t, contents, "timezone: America/Sao_Paulo")
	assert.Contains(t, contents, "enabled: false")
}

func TestInit_SeedsCategories(t *testing.T) {
	dir := initRepo(t)

	cats, err := categories.Load(filepath.Join(dir, "categories.csv"))
	require.NoError(t, err)
	assert.Len(t, cats, len(categories.Defaults()))

	out, err := runExtrato(t, "categories", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "iFood")
	assert.Contains(t, out, "Poupança")
}

func TestInit_RefusesExistingDirectory(t *testing.T) {
	dir := initRepo(t)
	out, err := runExtrato(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_Git(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	out, err := runExtrato(t, "init", dir, "--git")
	require.NoError(t, err, out)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "init:")

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "extrato.db")
}

func TestVersion(t *testing.T) {
	out, err := runExtrato(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit none")
}

func TestCommands_RequireDataDirectory(t *testing.T) {
	out, err := runExtrato(t, "accounts", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "extrato init")
}

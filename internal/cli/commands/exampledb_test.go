package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listatree/hypothesis/internal/backend"
	"github.com/listatree/hypothesis/internal/cli/config"
	"github.com/listatree/hypothesis/internal/database"
)

// useSQLiteFile points the commands at a fresh sqlite file through the
// environment, the way a test run would
func useSQLiteFile(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "examples.db")
	t.Setenv(config.DatabaseFileEnv, path)
	t.Setenv("EXAMPLEDB_BACKEND_DRIVER", backend.DriverSQLite)
	t.Setenv("EXAMPLEDB_LOG_LEVEL", "error")
	return path
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSaveThenFetch(t *testing.T) {
	path := useSQLiteFile(t)

	out, _, err := runCommand(t, "save", "[int]", "[1, 2, 3]")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved [1, 2, 3] under [int]")

	_, _, err = runCommand(t, "save", "[int]", "[1, 2, 3]")
	require.NoError(t, err)

	out, _, err = runCommand(t, "fetch", "[int]")
	require.NoError(t, err)
	assert.Contains(t, out, "[1, 2, 3]  [1,2,3]\n")
	assert.Contains(t, out, "1 example(s) for [int]")

	out, _, err = runCommand(t, "fetch", "--json", "[int]")
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]\n", out)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveEncodedFlag(t *testing.T) {
	useSQLiteFile(t)

	out, _, err := runCommand(t, "save", "--encoded", "{'a': int, 'b': text}", `[1, "x"]`)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved {'a': 1, 'b': 'x'} under {'a': int, 'b': text}")

	out, _, err = runCommand(t, "fetch", "--json", "{'b': text, 'a': int}")
	require.NoError(t, err)
	assert.Equal(t, "[1,\"x\"]\n", out)
}

func TestFetchEmpty(t *testing.T) {
	useSQLiteFile(t)

	out, _, err := runCommand(t, "fetch", "sampled_from(('x', 'y'))")
	require.NoError(t, err)
	assert.Contains(t, out, "No examples stored for sampled_from(('x', 'y'))")
}

func TestSaveRejectsMismatch(t *testing.T) {
	useSQLiteFile(t)

	_, _, err := runCommand(t, "save", "int", "'x'")
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrShapeMismatch)

	out, _, err := runCommand(t, "fetch", "int")
	require.NoError(t, err)
	assert.Contains(t, out, "No examples stored for int")
}

func TestFetchStopsAtCorruptRecord(t *testing.T) {
	path := useSQLiteFile(t)

	b, err := backend.OpenSQL(backend.DriverSQLite, path, "")
	require.NoError(t, err)
	require.NoError(t, b.Save(t.Context(), "int", "[false, false, true]"))
	require.NoError(t, b.Close())

	_, _, err = runCommand(t, "fetch", "int")
	assert.ErrorIs(t, err, database.ErrShapeMismatch)
}

func TestCheck(t *testing.T) {
	useSQLiteFile(t)

	out, _, err := runCommand(t, "check", "binary", `b'\x00\xff'`)
	require.NoError(t, err)
	assert.Contains(t, out, "Key:     binary")
	assert.Contains(t, out, `Encoded: "AP8="`)
	assert.Contains(t, out, "round trip ok")

	out, _, err = runCommand(t, "check", "one_of(int, sampled_from((5, 6)))", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Encoded: [0,5]")

	out, _, err = runCommand(t, "fetch", "binary")
	require.NoError(t, err)
	assert.Contains(t, out, "No examples stored", "check must not write")
}

func TestParseErrorsAreReported(t *testing.T) {
	useSQLiteFile(t)

	_, stderr, err := runCommand(t, "save", "[int", "[1]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, stderr, "[int")

	_, stderr, err = runCommand(t, "check", "int", "[1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, stderr, "[1")
}

func TestConfigErrorsAreReported(t *testing.T) {
	useSQLiteFile(t)
	t.Setenv("EXAMPLEDB_BACKEND_TYPE", "cassandra")

	_, stderr, err := runCommand(t, "fetch", "int")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, stderr, "backend.type")
}

func TestConfigFileFlag(t *testing.T) {
	useSQLiteFile(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	content := "backend:\n  type: memory\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	_, _, err := runCommand(t, "save", "--config", file, "text", "'boom'")
	require.NoError(t, err)

	// memory does not outlive the process, let alone the command
	out, _, err := runCommand(t, "fetch", "--config", file, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No examples stored for text")
}

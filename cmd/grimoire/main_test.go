package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Grimoire dev")
	assert.Contains(t, out, "Commit: none")
}

func TestInitDBCmd(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	base := []string{"init-db", "--data-path", dir, "--env-file", filepath.Join(dir, "none.env")}

	out, err := run(t, base...)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "grimoire.db"))
	assert.FileExists(t, filepath.Join(dir, "grimoire.db"))

	out, err = run(t, append(base, "--username", "alice", "--password", "secret")...)
	require.NoError(t, err)
	assert.Contains(t, out, `Created user "alice"`)

	out, err = run(t, append(base, "--username", "alice", "--password", "other")...)
	require.NoError(t, err)
	assert.Contains(t, out, `User "alice" already exists`)
}

func TestInitDBCmd_FlagErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "init-db", "--data-path", dir, "--username", "alice")
	assert.Error(t, err)

	_, err = run(t, "init-db", "--data-path", dir, "--env-file", filepath.Join(dir, "none.env"),
		"--username", "alice", "--password", "abc")
	assert.Error(t, err, "password policy applies")
}

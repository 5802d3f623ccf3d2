package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears the package-level flag state between runs.
func resetFlags() {
	configFile = ""
	debug = false
	flagFrom = ""
	flagTo = ""
	patternsFile = ""
	literal = false
	wordBreaks = false
	ignoreCase = false
	preserveCase = false
	atOnce = false
	full = false
	renamesOnly = false
	dryRun = false
	backupSuffix = ""
	ignoreGlobs = nil
	jsonOutput = false
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestRootCmd_FromTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("humpty sat on a wall\n"), 0644))

	err := runCommand(t, "--from", "humpty", "--to", "dumpty", "--literal", dir)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dumpty sat on a wall\n", string(content))

	backup, err := os.ReadFile(path + ".orig")
	require.NoError(t, err)
	assert.Equal(t, "humpty sat on a wall\n", string(backup))
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha and beta\n"), 0644))

	cfgPath := filepath.Join(dir, "swap.yaml")
	cfg := `
patterns:
  - from: alpha
    to: beta
  - from: beta
    to: alpha
literal: true
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	err := runCommand(t, "--config", cfgPath, dir)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "beta and alpha\n", string(content))
}

func TestRootCmd_DryRunLeavesFilesAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("humpty\n"), 0644))

	err := runCommand(t, "--from", "humpty", "--to", "dumpty", "--literal", "--dry-run", dir)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "humpty\n", string(content))
	assert.NoFileExists(t, path+".orig")
}

func TestRootCmd_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("humpty\n"), 0644))

	// --json writes to stdout directly, capture it.
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	runErr := runCommand(t, "--from", "humpty", "--to", "dumpty", "--literal", "--json", dir)
	require.NoError(t, w.Close())
	os.Stdout = old
	require.NoError(t, runErr)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	var doc struct {
		Files []struct {
			Path    string `json:"path"`
			Matches int    `json:"matches"`
		} `json:"files"`
		Summary struct {
			FilesChanged int `json:"files_changed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Files, 1)
	assert.Equal(t, path, doc.Files[0].Path)
	assert.Equal(t, 1, doc.Files[0].Matches)
	assert.Equal(t, 1, doc.Summary.FilesChanged)
}

func TestRootCmd_NoPatterns(t *testing.T) {
	err := runCommand(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patterns configured")
}

func TestRootCmd_FromWithoutTo(t *testing.T) {
	err := runCommand(t, "--to", "dumpty", t.TempDir())
	require.Error(t, err)
}

func TestUndoCmd_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("humpty sat\n"), 0644))

	require.NoError(t, runCommand(t, "--from", "humpty", "--to", "dumpty", "--literal", dir))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "dumpty sat\n", string(content))

	require.NoError(t, runCommand(t, "undo", "--from", "humpty", "--to", "dumpty", "--literal", dir))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "humpty sat\n", string(content))
	assert.NoFileExists(t, path+".orig")
}

func TestUndoCmd_FullRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "humpty.txt")
	require.NoError(t, os.WriteFile(path, []byte("humpty sat\n"), 0644))

	require.NoError(t, runCommand(t, "--from", "humpty", "--to", "dumpty", "--literal", "--full", dir))

	renamed := filepath.Join(dir, "dumpty.txt")
	content, err := os.ReadFile(renamed)
	require.NoError(t, err)
	require.Equal(t, "dumpty sat\n", string(content))

	require.NoError(t, runCommand(t, "undo", "--from", "humpty", "--to", "dumpty", "--literal", "--full", dir))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "humpty sat\n", string(content))
	assert.NoFileExists(t, renamed)
}

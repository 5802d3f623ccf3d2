package transform

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// tempFile is a scoped temp-file guard for atomic writes. The temp file
// lives in the target's directory so the final rename never crosses a
// filesystem boundary. Every exit path either commits (rename onto the
// target) or cleans up; the target itself is never left half-written.
type tempFile struct {
	f         *os.File
	path      string
	committed bool
}

// newTempFile creates the guard next to target.
func newTempFile(target string) (*tempFile, error) {
	f, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, errors.Errorf("creating temp file: %w", err)
	}
	return &tempFile{f: f, path: f.Name()}, nil
}

// Write writes content to the temp file.
func (t *tempFile) Write(content []byte) error {
	if _, err := t.f.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	return nil
}

// Commit renames the temp file onto target with the given mode. After a
// successful commit, Cleanup is a no-op.
func (t *tempFile) Commit(target string, mode os.FileMode) error {
	if err := t.f.Chmod(mode); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := t.f.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(t.path, target); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	t.committed = true
	return nil
}

// Cleanup removes the temp file unless it was committed. Best effort.
func (t *tempFile) Cleanup() {
	if t.committed {
		return
	}
	t.f.Close()
	os.Remove(t.path)
}

// writeFileAtomic writes content to path through a temp file in the same
// directory. On any failure the original file at path is untouched and the
// temp file is removed.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tmp, err := newTempFile(path)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	if err := tmp.Write(content); err != nil {
		return err
	}
	return tmp.Commit(path, mode)
}

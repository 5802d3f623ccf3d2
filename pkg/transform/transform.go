// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transform applies a compiled pattern set to files: content is
// rewritten through an atomic temp-write-then-rename with a backup copy of
// the original, and paths are renamed with numeric-suffix collision
// avoidance. Each file is processed independently; the only run-scoped
// state is the set of rename targets already claimed.
package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/swaprc/pkg/pattern"
	"github.com/walteh/swaprc/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// DefaultBackupSuffix is appended to a file's path to form its backup.
const DefaultBackupSuffix = ".orig"

// 🔧 Options controls what the engine does to each file.
type Options struct {
	Full         bool   // rewrite content and rename paths
	RenamesOnly  bool   // rename paths, leave content alone
	AtOnce       bool   // match content across line boundaries
	DryRun       bool   // compute everything, mutate nothing
	BackupSuffix string // backup suffix, must start with '.'
}

// 📄 Result is the per-file record of what the engine did (or, under
// dry-run, would do). It is never mutated after ProcessFile returns.
type Result struct {
	Path            string `json:"path"`
	NewPath         string `json:"new_path,omitempty"` // empty if not renamed
	Matches         int    `json:"matches"`
	OverlapsSkipped int    `json:"overlaps_skipped"`
	BytesBefore     int64  `json:"bytes_before"`
	BytesAfter      int64  `json:"bytes_after"`
	ContentChanged  bool   `json:"content_changed"`
	SkippedBackup   bool   `json:"skipped_backup,omitempty"` // path ends in the backup suffix
	SkippedBinary   bool   `json:"skipped_binary,omitempty"` // content phase skipped, NUL byte found
	Err             error  `json:"-"`
}

// 🔧 Engine applies one compiled pattern set across a run.
type Engine struct {
	patterns []*pattern.Pattern
	opts     Options

	// claimed tracks rename targets taken earlier in this run so two
	// sources can never resolve to the same target, even under dry-run.
	claimed map[string]bool
}

// 🏭 New creates an engine. The backup suffix defaults to ".orig" and must
// start with '.' so a backup can never shadow its original.
func New(patterns []*pattern.Pattern, opts Options) (*Engine, error) {
	if len(patterns) == 0 {
		return nil, errors.Errorf("at least one pattern is required")
	}
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}
	if !strings.HasPrefix(opts.BackupSuffix, ".") {
		return nil, errors.Errorf("backup suffix %q must start with '.'", opts.BackupSuffix)
	}
	if opts.Full && opts.RenamesOnly {
		return nil, errors.Errorf("full and renames-only are mutually exclusive")
	}
	return &Engine{
		patterns: patterns,
		opts:     opts,
		claimed:  make(map[string]bool),
	}, nil
}

// 🏃 ProcessFile runs the engine over a single file. I/O failures are
// reported in the result, never panicked or propagated; one bad file must
// not abort the run.
func (e *Engine) ProcessFile(ctx context.Context, path string) Result {
	logger := zerolog.Ctx(ctx)
	res := Result{Path: path}

	// Never read or rewrite a backup from a previous run.
	if strings.HasSuffix(path, e.opts.BackupSuffix) {
		logger.Debug().Str("path", path).Msg("skipping backup file")
		res.SkippedBackup = true
		return res
	}

	backedUp := false
	if !e.opts.RenamesOnly {
		if err := e.rewriteContent(ctx, path, &res, &backedUp); err != nil {
			res.Err = err
			return res
		}
	}

	if e.opts.Full || e.opts.RenamesOnly {
		if err := e.renamePath(ctx, path, &res, backedUp); err != nil {
			res.Err = err
			return res
		}
	}

	return res
}

// 📝 rewriteContent runs the matcher over the file's bytes and commits the
// result atomically. The backup copy is written before the destructive
// rename, so a crash mid-write can never destroy the only copy of the
// original.
func (e *Engine) rewriteContent(ctx context.Context, path string, res *Result, backedUp *bool) error {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stating file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading file: %w", err)
	}
	res.BytesBefore = int64(len(data))
	res.BytesAfter = int64(len(data))

	if bytes.IndexByte(data, 0x00) >= 0 {
		logger.Debug().Str("path", path).Msg("binary file, content phase skipped")
		res.SkippedBinary = true
		return nil
	}

	out := rewrite.Apply(e.patterns, string(data), e.opts.AtOnce)
	res.Matches += out.Matches
	res.OverlapsSkipped += out.OverlapsSkipped
	if out.Matches == 0 {
		return nil
	}
	res.BytesAfter = int64(len(out.Output))
	res.ContentChanged = out.Output != string(data)

	if e.opts.DryRun {
		return nil
	}

	// Backup first, then the atomic swap.
	backupPath := path + e.opts.BackupSuffix
	if err := copyFile(path, backupPath, info); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	*backedUp = true

	if err := writeFileAtomic(path, []byte(out.Output), info.Mode()); err != nil {
		return errors.Errorf("writing rewritten file: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Int("matches", out.Matches).
		Int("overlaps_skipped", out.OverlapsSkipped).
		Msg("content rewritten")
	return nil
}

// 📁 renamePath applies the matcher to the path string itself. The backup
// always stays at the pre-rename path; that is what lets undo re-derive the
// rename from the backup's own name.
func (e *Engine) renamePath(ctx context.Context, path string, res *Result, backedUp bool) error {
	logger := zerolog.Ctx(ctx)

	// Normalized separators keep patterns from accidentally spanning
	// directory boundaries on platforms with '\'.
	out := rewrite.Apply(e.patterns, filepath.ToSlash(path), true)
	res.Matches += out.Matches
	res.OverlapsSkipped += out.OverlapsSkipped

	newPath := filepath.FromSlash(out.Output)
	if newPath == path {
		return nil
	}

	target := e.claimTarget(newPath)
	res.NewPath = target

	if e.opts.DryRun {
		return nil
	}

	if !backedUp {
		// A rename with no prior content backup still gets one at the old
		// path: the backup is the sole undo record.
		info, err := os.Stat(path)
		if err != nil {
			return errors.Errorf("stating file: %w", err)
		}
		if err := copyFile(path, path+e.opts.BackupSuffix, info); err != nil {
			return errors.Errorf("creating backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}
	if err := os.Rename(path, target); err != nil {
		return errors.Errorf("renaming file: %w", err)
	}

	logger.Debug().Str("from", path).Str("to", target).Msg("file renamed")
	return nil
}

// 🔍 claimTarget resolves rename collisions: if the target exists on disk
// or was claimed earlier in this run, numeric suffixes (.1, .2, ...) are
// appended until a free target is found. Files are never silently
// clobbered.
func (e *Engine) claimTarget(newPath string) string {
	target := newPath
	for n := 1; e.claimed[target] || exists(target); n++ {
		target = fmt.Sprintf("%s.%d", newPath, n)
	}
	e.claimed[target] = true
	return target
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyFile copies src to dst preserving mode and modification time. The
// mtime matters: undo validates that a backup is not newer than the file it
// restores over, and os.Rename keeps the renamed file's original mtime, so
// the backup must keep it too.
func copyFile(src, dst string, info os.FileInfo) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return errors.Errorf("copying file: %w", err)
	}
	if err := destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("preserving backup mtime: %w", err)
	}
	return nil
}

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

// Package undo reverses a prior transform run from its backup files. The
// backup's own path is the entire undo record: stripping the suffix yields
// the original path, and re-running the same pattern set over that path
// re-derives where the file was renamed to. The subsystem is conservative:
// anything ambiguous or stale is skipped with a warning, never guessed at.
package undo

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/swaprc/pkg/pattern"
	"github.com/walteh/swaprc/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 📄 Outcome is the terminal state of one backup file: restored, or skipped
// with a named reason. A skipped backup means zero filesystem mutation.
type Outcome struct {
	BackupPath    string `json:"backup_path"`
	OriginalPath  string `json:"original_path"`
	PredictedPath string `json:"predicted_path,omitempty"` // set when a rename occurred
	Restored      bool   `json:"restored"`
	SkipReason    string `json:"skip_reason,omitempty"`
	Err           error  `json:"-"`
}

// 🔧 Undoer reverses transforms using the same compiled pattern set the
// original run used.
type Undoer struct {
	patterns []*pattern.Pattern
	suffix   string
	dryRun   bool
}

// 🏭 New creates an undoer.
func New(patterns []*pattern.Pattern, suffix string, dryRun bool) (*Undoer, error) {
	if len(patterns) == 0 {
		return nil, errors.Errorf("at least one pattern is required")
	}
	if suffix == "" || !strings.HasPrefix(suffix, ".") {
		return nil, errors.Errorf("backup suffix %q must start with '.'", suffix)
	}
	return &Undoer{patterns: patterns, suffix: suffix, dryRun: dryRun}, nil
}

// 🔍 Discover walks the roots and returns every backup file, in
// deterministic lexical order. A root that is itself a backup file is
// included directly.
func (u *Undoer) Discover(ctx context.Context, roots []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var backups []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Errorf("stating root %s: %w", root, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(root, u.suffix) {
				backups = append(backups, root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, u.suffix) {
				backups = append(backups, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking root %s: %w", root, err)
		}
	}

	logger.Debug().Int("backups", len(backups)).Msg("backup files discovered")
	return backups, nil
}

// 🏃 Run processes each discovered backup through the
// predict/validate/restore state machine and returns one outcome per
// backup. Per-file failures never abort the run.
func (u *Undoer) Run(ctx context.Context, backups []string) []Outcome {
	logger := zerolog.Ctx(ctx)

	// Predictions are computed up front so ambiguity (two backups deriving
	// the same current path) is visible before anything is touched.
	predicted := make([]string, len(backups))
	claims := make(map[string]int)
	for i, backup := range backups {
		original := strings.TrimSuffix(backup, u.suffix)
		out := rewrite.Apply(u.patterns, filepath.ToSlash(original), true)
		predicted[i] = filepath.FromSlash(out.Output)
		claims[predicted[i]]++
	}

	outcomes := make([]Outcome, 0, len(backups))
	for i, backup := range backups {
		oc := u.restoreOne(ctx, backup, predicted[i], claims[predicted[i]] > 1)
		if oc.Restored {
			logger.Debug().Str("backup", backup).Str("restored", oc.OriginalPath).Msg("backup restored")
		} else {
			logger.Warn().Str("backup", backup).Str("reason", oc.SkipReason).Msg("backup skipped")
		}
		outcomes = append(outcomes, oc)
	}
	return outcomes
}

// restoreOne runs the state machine for a single backup file. All
// validations must hold before any mutation happens; a failed validation is
// a skip, not an error.
func (u *Undoer) restoreOne(ctx context.Context, backup, predictedPath string, ambiguous bool) Outcome {
	original := strings.TrimSuffix(backup, u.suffix)
	renamed := predictedPath != original

	oc := Outcome{
		BackupPath:   backup,
		OriginalPath: original,
	}
	if renamed {
		oc.PredictedPath = predictedPath
	}

	if ambiguous {
		oc.SkipReason = "ambiguous prediction: another backup derives the same current path " + predictedPath
		return oc
	}

	predictedInfo, err := os.Stat(predictedPath)
	if err != nil {
		oc.SkipReason = "predicted file " + predictedPath + " does not exist"
		return oc
	}

	backupInfo, err := os.Stat(backup)
	if err != nil {
		oc.Err = errors.Errorf("stating backup: %w", err)
		return oc
	}
	if backupInfo.ModTime().After(predictedInfo.ModTime()) {
		oc.SkipReason = "backup is newer than " + predictedPath + " (modified since the original run?)"
		return oc
	}

	if renamed {
		if _, err := os.Stat(original); err == nil {
			oc.SkipReason = "original path " + original + " already exists, restoring would clobber it"
			return oc
		}
	}

	if u.dryRun {
		oc.Restored = true
		return oc
	}

	// Restore first, then drop the renamed file; the ordering means an
	// interruption can leave a duplicate but never a missing file.
	if err := os.Rename(backup, original); err != nil {
		oc.Err = errors.Errorf("restoring backup: %w", err)
		return oc
	}
	if renamed {
		if err := os.Remove(predictedPath); err != nil {
			oc.Err = errors.Errorf("removing renamed file: %w", err)
			return oc
		}
	}

	oc.Restored = true
	return oc
}

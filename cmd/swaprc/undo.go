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

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/swaprc/pkg/status"
	"github.com/walteh/swaprc/pkg/undo"
	"gitlab.com/tozd/go/errors"
)

// NewUndoCmd creates the undo command. It must be run with the same pattern
// set as the run being reversed, since rename targets are re-derived from
// the patterns rather than recorded anywhere.
func NewUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo [flags] [path...]",
		Short: "Restore files from the backups a previous run left behind",
		Long: `Undo walks the roots for backup files, strips the backup suffix to find
each file's original path, re-applies the patterns to that path to find
where the file was renamed to, and restores the original. Ambiguous or
stale backups are skipped with a warning and left on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(cmd, args)
		},
	}
	return cmd
}

// runUndo mirrors runApply: same config and pattern resolution, opposite
// direction.
func runUndo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	patterns, err := compilePatterns(cmd, cfg)
	if err != nil {
		return err
	}

	undoer, err := undo.New(patterns, cfg.BackupSuffix, cfg.DryRun)
	if err != nil {
		return err
	}

	backups, err := undoer.Discover(ctx, cfg.Roots)
	if err != nil {
		return err
	}

	userLogger := status.NewUserLogger(ctx)
	outcomes := undoer.Run(ctx, backups)

	var tally status.UndoTally
	for _, oc := range outcomes {
		tally.Add(oc)
		if !jsonOutput {
			userLogger.LogOutcome(oc)
		}
	}

	if jsonOutput {
		if err := status.WriteUndoJSON(os.Stdout, outcomes, tally); err != nil {
			return err
		}
	} else {
		userLogger.UndoSummary(tally)
	}

	if tally.ExitCode() != 0 {
		return errors.Errorf("%d backup(s) failed to restore", tally.Errors)
	}
	return nil
}

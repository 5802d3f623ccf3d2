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

// Package status aggregates per-file results into the run summary and
// renders them for humans (colored console lines) or machines (JSON).
package status

import (
	"encoding/json"
	"io"

	"github.com/walteh/swaprc/pkg/transform"
	"github.com/walteh/swaprc/pkg/undo"
	"gitlab.com/tozd/go/errors"
)

// 📊 Tally accumulates transform results across one run. It is owned by the
// single processing goroutine and read once at run end.
type Tally struct {
	FilesFound      int `json:"files_found"`
	FilesChanged    int `json:"files_changed"`
	FilesRenamed    int `json:"files_renamed"`
	MatchesFound    int `json:"matches_found"`
	OverlapsSkipped int `json:"overlaps_skipped"`
	BackupsSkipped  int `json:"backups_skipped"`
	BinariesSkipped int `json:"binaries_skipped"`
	Errors          int `json:"errors"`
}

// Add folds one per-file result into the tally.
func (t *Tally) Add(res transform.Result) {
	t.FilesFound++
	if res.SkippedBackup {
		t.BackupsSkipped++
		return
	}
	if res.Err != nil {
		t.Errors++
		return
	}
	if res.SkippedBinary {
		t.BinariesSkipped++
	}
	t.MatchesFound += res.Matches
	t.OverlapsSkipped += res.OverlapsSkipped
	if res.ContentChanged {
		t.FilesChanged++
	}
	if res.NewPath != "" {
		t.FilesRenamed++
	}
}

// ExitCode maps the tally onto the process exit status: per-file errors make
// the run fail, warnings (collisions, skipped backups) do not.
func (t *Tally) ExitCode() int {
	if t.Errors > 0 {
		return 1
	}
	return 0
}

// 📊 UndoTally accumulates undo outcomes.
type UndoTally struct {
	BackupsFound int `json:"backups_found"`
	Restored     int `json:"restored"`
	Skipped      int `json:"skipped"`
	Errors       int `json:"errors"`
}

// Add folds one backup outcome into the tally.
func (t *UndoTally) Add(oc undo.Outcome) {
	t.BackupsFound++
	switch {
	case oc.Err != nil:
		t.Errors++
	case oc.Restored:
		t.Restored++
	default:
		t.Skipped++
	}
}

// ExitCode is non-zero iff restoring hit a real error; skips are warnings.
func (t *UndoTally) ExitCode() int {
	if t.Errors > 0 {
		return 1
	}
	return 0
}

// jsonResult is a transform.Result with its error flattened to a string.
type jsonResult struct {
	transform.Result
	Error string `json:"error,omitempty"`
}

// jsonOutcome is an undo.Outcome with its error flattened to a string.
type jsonOutcome struct {
	undo.Outcome
	Error string `json:"error,omitempty"`
}

// WriteJSON renders the per-file records plus the summary as one JSON
// document, for consumers that want structured output.
func WriteJSON(w io.Writer, results []transform.Result, tally Tally) error {
	doc := struct {
		Files   []jsonResult `json:"files"`
		Summary Tally        `json:"summary"`
	}{
		Files:   make([]jsonResult, 0, len(results)),
		Summary: tally,
	}
	for _, res := range results {
		jr := jsonResult{Result: res}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		doc.Files = append(doc.Files, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Errorf("encoding results: %w", err)
	}
	return nil
}

// WriteUndoJSON renders undo outcomes plus the summary as JSON.
func WriteUndoJSON(w io.Writer, outcomes []undo.Outcome, tally UndoTally) error {
	doc := struct {
		Backups []jsonOutcome `json:"backups"`
		Summary UndoTally     `json:"summary"`
	}{
		Backups: make([]jsonOutcome, 0, len(outcomes)),
		Summary: tally,
	}
	for _, oc := range outcomes {
		jo := jsonOutcome{Outcome: oc}
		if oc.Err != nil {
			jo.Error = oc.Err.Error()
		}
		doc.Backups = append(doc.Backups, jo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Errorf("encoding outcomes: %w", err)
	}
	return nil
}

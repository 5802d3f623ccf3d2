package status

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/walteh/swaprc/pkg/transform"
	"github.com/walteh/swaprc/pkg/undo"
)

// Formatter renders per-file lines and the run summary for the console.
type Formatter struct {
	// NoColor disables ANSI colors regardless of terminal detection.
	NoColor bool
}

// NewFormatter creates a formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) sprint(attr color.Attribute, s string) string {
	if f.NoColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

// FormatResult renders one transform result as a console line.
func (f *Formatter) FormatResult(res transform.Result) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("%s %s: %v", f.sprint(color.FgRed, "✗"), res.Path, res.Err)
	case res.SkippedBackup:
		return fmt.Sprintf("%s %s (backup from a previous run)", f.sprint(color.FgYellow, "-"), res.Path)
	case res.NewPath != "" && res.ContentChanged:
		return fmt.Sprintf("%s %s → %s (%d matches)", f.sprint(color.FgBlue, "⟳"), res.Path, res.NewPath, res.Matches)
	case res.NewPath != "":
		return fmt.Sprintf("%s %s → %s", f.sprint(color.FgCyan, "→"), res.Path, res.NewPath)
	case res.ContentChanged:
		return fmt.Sprintf("%s %s (%d matches)", f.sprint(color.FgBlue, "⟳"), res.Path, res.Matches)
	default:
		return fmt.Sprintf("%s %s", f.sprint(color.Faint, "•"), res.Path)
	}
}

// FormatOutcome renders one undo outcome as a console line.
func (f *Formatter) FormatOutcome(oc undo.Outcome) string {
	switch {
	case oc.Err != nil:
		return fmt.Sprintf("%s %s: %v", f.sprint(color.FgRed, "✗"), oc.BackupPath, oc.Err)
	case oc.Restored && oc.PredictedPath != "":
		return fmt.Sprintf("%s %s restored (was %s)", f.sprint(color.FgGreen, "✓"), oc.OriginalPath, oc.PredictedPath)
	case oc.Restored:
		return fmt.Sprintf("%s %s restored", f.sprint(color.FgGreen, "✓"), oc.OriginalPath)
	default:
		return fmt.Sprintf("%s %s skipped: %s", f.sprint(color.FgYellow, "-"), oc.BackupPath, oc.SkipReason)
	}
}

// FormatSummary renders the end-of-run tally. A run always ends with this
// line so partial failures are never silent.
func (f *Formatter) FormatSummary(t Tally) string {
	s := fmt.Sprintf("%d files, %d changed, %d renamed, %d matches",
		t.FilesFound, t.FilesChanged, t.FilesRenamed, t.MatchesFound)
	if t.OverlapsSkipped > 0 {
		s += fmt.Sprintf(", %d overlaps skipped", t.OverlapsSkipped)
	}
	if t.BackupsSkipped > 0 {
		s += fmt.Sprintf(", %d backups skipped", t.BackupsSkipped)
	}
	if t.BinariesSkipped > 0 {
		s += fmt.Sprintf(", %d binary files skipped", t.BinariesSkipped)
	}
	if t.Errors > 0 {
		s += ", " + f.sprint(color.FgRed, fmt.Sprintf("%d errors", t.Errors))
	}
	return s
}

// FormatUndoSummary renders the undo run tally.
func (f *Formatter) FormatUndoSummary(t UndoTally) string {
	s := fmt.Sprintf("%d backups, %d restored, %d skipped", t.BackupsFound, t.Restored, t.Skipped)
	if t.Errors > 0 {
		s += ", " + f.sprint(color.FgRed, fmt.Sprintf("%d errors", t.Errors))
	}
	return s
}

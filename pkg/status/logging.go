package status

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/swaprc/pkg/transform"
	"github.com/walteh/swaprc/pkg/undo"
)

// 📢 UserLogger provides user-friendly console feedback alongside the
// structured zerolog stream.
type UserLogger struct {
	log       zerolog.Logger
	formatter *Formatter
}

// 🎯 NewUserLogger creates a user logger from the context logger.
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log:       *zerolog.Ctx(ctx),
		formatter: NewFormatter(),
	}
}

// 📝 LogResult prints one file's outcome and mirrors it to zerolog.
func (u *UserLogger) LogResult(res transform.Result) {
	pterm.Println(u.formatter.FormatResult(res))

	ev := u.log.Info()
	if res.Err != nil {
		ev = u.log.Error().Err(res.Err)
	}
	ev.Str("path", res.Path).
		Str("new_path", res.NewPath).
		Int("matches", res.Matches).
		Int("overlaps_skipped", res.OverlapsSkipped).
		Bool("content_changed", res.ContentChanged).
		Msg("file processed")
}

// 📝 LogOutcome prints one backup's undo outcome.
func (u *UserLogger) LogOutcome(oc undo.Outcome) {
	pterm.Println(u.formatter.FormatOutcome(oc))

	switch {
	case oc.Err != nil:
		u.log.Error().Err(oc.Err).Str("backup", oc.BackupPath).Msg("restore failed")
	case oc.Restored:
		u.log.Info().Str("backup", oc.BackupPath).Str("restored", oc.OriginalPath).Msg("backup restored")
	default:
		u.log.Warn().Str("backup", oc.BackupPath).Str("reason", oc.SkipReason).Msg("backup skipped")
	}
}

// 📊 Summary prints the end-of-run tally.
func (u *UserLogger) Summary(t Tally) {
	line := u.formatter.FormatSummary(t)
	if t.Errors > 0 {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(line)
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(line)
	}
	u.log.Info().Int("files", t.FilesFound).Int("errors", t.Errors).Msg(line)
}

// 📊 UndoSummary prints the undo run tally.
func (u *UserLogger) UndoSummary(t UndoTally) {
	line := u.formatter.FormatUndoSummary(t)
	switch {
	case t.Errors > 0:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(line)
	case t.Skipped > 0:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(line)
	default:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(line)
	}
	u.log.Info().Int("backups", t.BackupsFound).Int("restored", t.Restored).Msg(line)
}

// ⚠️ Warning prints a standalone warning line.
func (u *UserLogger) Warning(msg string) {
	pterm.Warning.Println(msg)
	u.log.Warn().Msg(msg)
}

// ❌ Error prints a standalone error line.
func (u *UserLogger) Error(msg string) {
	pterm.Error.Println(msg)
	u.log.Error().Msg(msg)
}

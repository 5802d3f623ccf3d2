// Package discover produces the candidate file list for a run: a
// deterministic lexical walk of the roots with doublestar ignore globs. It
// only decides which files the engine sees, never what happens to them.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Walk returns every regular file under the roots, in the order the roots
// were given and lexical order within each root. A root that is itself a
// file is included directly. Ignore patterns are doublestar globs matched
// against the slash-normalized path.
func Walk(ctx context.Context, roots []string, ignorePatterns []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Errorf("stating root %s: %w", root, err)
		}
		if !info.IsDir() {
			if !ignored(ctx, root, ignorePatterns) {
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if ignored(ctx, path, ignorePatterns) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if ignored(ctx, path, ignorePatterns) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking root %s: %w", root, err)
		}
	}

	logger.Debug().Int("files", len(files)).Msg("candidate files discovered")
	return files, nil
}

// ignored checks the path against the ignore globs.
func ignored(ctx context.Context, path string, patterns []string) bool {
	for _, p := range patterns {
		matched, err := doublestar.Match(p, filepath.ToSlash(path))
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", p).Str("path", path).Err(err).Msg("error matching ignore pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

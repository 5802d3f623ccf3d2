package pattern

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// LoadRules reads a tab-separated patterns file: one rule per line, pattern
// and replacement separated by the first tab. Blank lines and lines starting
// with '#' are ignored. Rule order is preserved because it determines match
// priority.
func LoadRules(ctx context.Context, path string) ([]Rule, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading patterns file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading patterns file: %w", err)
	}

	rules, err := ParseRules(string(data))
	if err != nil {
		return nil, errors.Errorf("parsing patterns file %s: %w", path, err)
	}

	logger.Debug().Int("rules", len(rules)).Msg("patterns file loaded")
	return rules, nil
}

// ParseRules parses patterns-file content.
func ParseRules(data string) ([]Rule, error) {
	var rules []Rule
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		from, to, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, errors.Errorf("line %d: expected tab-separated pattern and replacement, got %q", i+1, line)
		}
		if from == "" {
			return nil, errors.Errorf("line %d: empty pattern", i+1)
		}
		rules = append(rules, Rule{From: from, To: to})
	}
	return rules, nil
}

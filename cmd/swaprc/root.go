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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/swaprc/pkg/config"
	"github.com/walteh/swaprc/pkg/discover"
	"github.com/walteh/swaprc/pkg/pattern"
	"github.com/walteh/swaprc/pkg/status"
	"github.com/walteh/swaprc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile   string
	debug        bool
	flagFrom     string
	flagTo       string
	patternsFile string
	literal      bool
	wordBreaks   bool
	ignoreCase   bool
	preserveCase bool
	atOnce       bool
	full         bool
	renamesOnly  bool
	dryRun       bool
	backupSuffix string
	ignoreGlobs  []string
	jsonOutput   bool
)

// defaultConfigFiles are probed in order when --config is not given.
var defaultConfigFiles = []string{".swaprc.yaml", ".swaprc.yml", ".swaprc.hcl"}

// NewRootCmd creates the root command. Running it with no subcommand applies
// the configured patterns to the roots.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swaprc [flags] [path...]",
		Short: "Apply simultaneous text and filename substitutions",
		Long: `swaprc rewrites file contents (and optionally filenames) using a set of
replacement patterns that are all applied in a single pass over the
original text, so rule sets like a->b, b->a swap cleanly. Every modified
file leaves a backup behind, and 'swaprc undo' restores from those
backups.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args)
		},
	}

	addRootFlags(cmd)
	cmd.AddCommand(NewUndoCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// addRootFlags wires every flag. Persistent flags are shared with undo so
// both directions of a run can be described identically.
func addRootFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file path (default: .swaprc.yaml, .swaprc.hcl)")
	pf.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	pf.StringVar(&flagFrom, "from", "", "single pattern to replace (requires --to)")
	pf.StringVar(&flagTo, "to", "", "replacement for --from")
	pf.StringVarP(&patternsFile, "patterns", "p", "", "tab-separated patterns file")
	pf.BoolVarP(&literal, "literal", "l", false, "treat patterns as literal strings, not regexps")
	pf.BoolVarP(&wordBreaks, "word-breaks", "w", false, "only match at word boundaries")
	pf.BoolVarP(&ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	pf.BoolVarP(&preserveCase, "preserve-case", "P", false, "expand patterns into snake/camel case variants")
	pf.BoolVar(&atOnce, "at-once", false, "match across line boundaries")
	pf.BoolVarP(&full, "full", "f", false, "rewrite content and rename files")
	pf.BoolVarP(&renamesOnly, "renames-only", "r", false, "rename files, leave content alone")
	pf.BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without touching anything")
	pf.StringVarP(&backupSuffix, "suffix", "s", "", "backup suffix (default .orig)")
	pf.StringSliceVar(&ignoreGlobs, "ignore", nil, "glob patterns of paths to skip")
	pf.BoolVar(&jsonOutput, "json", false, "emit structured JSON instead of console output")
}

// setupLogging configures zerolog from the debug flag and stores a context
// carrying the logger on the command.
func setupLogging(cmd *cobra.Command) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
}

// loadConfig loads the config file (explicit or probed) and layers the
// command-line flags on top. Flags win over file values.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	ctx := cmd.Context()

	cfg := &config.Config{}
	path := configFile
	if path == "" {
		for _, candidate := range defaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flag overrides. Booleans only override when explicitly set, so a
	// config file value is not clobbered by a flag default.
	if flagFrom != "" || flagTo != "" {
		if flagFrom == "" {
			return nil, errors.Errorf("--to requires --from")
		}
		cfg.Patterns = append(cfg.Patterns, pattern.Rule{From: flagFrom, To: flagTo})
	}
	if patternsFile != "" {
		cfg.PatternsFile = patternsFile
	}
	if backupSuffix != "" {
		cfg.BackupSuffix = backupSuffix
	}
	if len(ignoreGlobs) > 0 {
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, ignoreGlobs...)
	}
	overrideBool(cmd, "literal", &cfg.Literal, literal)
	overrideBool(cmd, "word-breaks", &cfg.WordBreaks, wordBreaks)
	overrideBool(cmd, "ignore-case", &cfg.IgnoreCase, ignoreCase)
	overrideBool(cmd, "preserve-case", &cfg.PreserveCase, preserveCase)
	overrideBool(cmd, "at-once", &cfg.AtOnce, atOnce)
	overrideBool(cmd, "full", &cfg.Full, full)
	overrideBool(cmd, "renames-only", &cfg.RenamesOnly, renamesOnly)
	overrideBool(cmd, "dry-run", &cfg.DryRun, dryRun)

	if len(args) > 0 {
		cfg.Roots = args
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideBool(cmd *cobra.Command, name string, dst *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

// compilePatterns resolves the rule list and compiles it.
func compilePatterns(cmd *cobra.Command, cfg *config.Config) ([]*pattern.Pattern, error) {
	rules, err := cfg.ResolveRules(cmd.Context())
	if err != nil {
		return nil, err
	}
	return pattern.Compile(rules, cfg.PatternOptions())
}

// runApply is the main flow: discover files, run each through the engine,
// report.
func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	patterns, err := compilePatterns(cmd, cfg)
	if err != nil {
		return err
	}

	engine, err := transform.New(patterns, cfg.TransformOptions())
	if err != nil {
		return err
	}

	files, err := discover.Walk(ctx, cfg.Roots, cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	userLogger := status.NewUserLogger(ctx)
	var tally status.Tally
	results := make([]transform.Result, 0, len(files))
	for _, path := range files {
		res := engine.ProcessFile(ctx, path)
		results = append(results, res)
		tally.Add(res)
		if !jsonOutput {
			userLogger.LogResult(res)
		}
	}

	if jsonOutput {
		if err := status.WriteJSON(os.Stdout, results, tally); err != nil {
			return err
		}
	} else {
		userLogger.Summary(tally)
	}

	logger.Debug().Int("files", tally.FilesFound).Int("errors", tally.Errors).Msg("run complete")
	if tally.ExitCode() != 0 {
		return errors.Errorf("%d file(s) failed", tally.Errors)
	}
	return nil
}

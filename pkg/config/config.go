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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/swaprc/pkg/pattern"
	"github.com/walteh/swaprc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	// Roots are the paths handed to discovery; defaults to the current
	// directory when empty.
	Roots []string `json:"roots,omitempty" yaml:"roots,omitempty" hcl:"roots,optional"`

	// Patterns are inline replacement rules; PatternsFile points to a
	// tab-separated patterns file. Both may be set: file rules come first.
	Patterns     []pattern.Rule `json:"patterns,omitempty" yaml:"patterns,omitempty" hcl:"pattern,block"`
	PatternsFile string         `json:"patterns_file,omitempty" yaml:"patterns_file,omitempty" hcl:"patterns_file,optional"`

	Literal      bool `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	WordBreaks   bool `json:"word_breaks,omitempty" yaml:"word_breaks,omitempty" hcl:"word_breaks,optional"`
	IgnoreCase   bool `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty" hcl:"ignore_case,optional"`
	PreserveCase bool `json:"preserve_case,omitempty" yaml:"preserve_case,omitempty" hcl:"preserve_case,optional"`

	Full        bool `json:"full,omitempty" yaml:"full,omitempty" hcl:"full,optional"`
	RenamesOnly bool `json:"renames_only,omitempty" yaml:"renames_only,omitempty" hcl:"renames_only,optional"`
	AtOnce      bool `json:"at_once,omitempty" yaml:"at_once,omitempty" hcl:"at_once,optional"`
	DryRun      bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`

	BackupSuffix   string   `json:"backup_suffix,omitempty" yaml:"backup_suffix,omitempty" hcl:"backup_suffix,optional"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.BackupSuffix == "" {
		cfg.BackupSuffix = transform.DefaultBackupSuffix
	}
	if !strings.HasPrefix(cfg.BackupSuffix, ".") {
		return errors.Errorf("backup_suffix %q must start with '.'", cfg.BackupSuffix)
	}
	if cfg.Full && cfg.RenamesOnly {
		return errors.Errorf("full and renames_only are mutually exclusive")
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}
	return nil
}

// 📜 ResolveRules returns the ordered rule list: patterns-file rules first,
// then inline rules. Order is meaningful, it sets match priority.
func (cfg *Config) ResolveRules(ctx context.Context) ([]pattern.Rule, error) {
	var rules []pattern.Rule
	if cfg.PatternsFile != "" {
		fileRules, err := pattern.LoadRules(ctx, cfg.PatternsFile)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	rules = append(rules, cfg.Patterns...)
	if len(rules) == 0 {
		return nil, errors.Errorf("no patterns configured: set patterns, patterns_file, or --from/--to")
	}
	return rules, nil
}

// PatternOptions maps the config onto pattern compilation flags.
func (cfg *Config) PatternOptions() pattern.Options {
	return pattern.Options{
		Literal:      cfg.Literal,
		WordBreaks:   cfg.WordBreaks,
		IgnoreCase:   cfg.IgnoreCase,
		PreserveCase: cfg.PreserveCase,
	}
}

// TransformOptions maps the config onto engine options.
func (cfg *Config) TransformOptions() transform.Options {
	return transform.Options{
		Full:         cfg.Full,
		RenamesOnly:  cfg.RenamesOnly,
		AtOnce:       cfg.AtOnce,
		DryRun:       cfg.DryRun,
		BackupSuffix: cfg.BackupSuffix,
	}
}

// Package pattern compiles replacement rules into matchers. A rule is one
// (from, to) pair; compilation may escape it (literal mode), anchor it to
// word boundaries, and fan it out into case-style variants. Compiled
// patterns keep their list order, which is the tie-break priority when
// matches from different patterns overlap.
package pattern

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/swaprc/pkg/casing"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is one replacement rule as written by the user.
type Rule struct {
	From string `json:"from" yaml:"from" hcl:"from"`
	To   string `json:"to" yaml:"to" hcl:"to"`
}

// 🔧 Options controls how rules are compiled.
type Options struct {
	Literal      bool // treat From as plain text, not a regular expression
	WordBreaks   bool // anchor matches to word boundaries
	IgnoreCase   bool // case-insensitive matching, replacement used verbatim
	PreserveCase bool // expand each rule into its case-variant family
}

// 📍 Span is one candidate match of a single pattern over a buffer.
type Span struct {
	Start   int
	End     int
	Pattern int // index into the compiled pattern list

	// groups holds the full submatch index slice for backreference
	// expansion against this span's own captures.
	groups []int
}

// 🎯 Pattern is a compiled matcher plus its replacement template.
type Pattern struct {
	Rule    Rule // the rule this pattern was compiled from (post-expansion)
	Variant bool // true if derived by case-preserving expansion

	re       *regexp.Regexp
	template string // replacement in Go expand syntax, regex rules only
	literal  bool
}

// Find returns every non-overlapping match of this pattern alone in s.
// The Pattern index of the returned spans is left zero; the caller tags
// spans with the pattern's list position.
func (p *Pattern) Find(s string) []Span {
	matches := p.re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, Span{Start: m[0], End: m[1], groups: m})
	}
	return spans
}

// Expand resolves the replacement text for one of this pattern's spans.
// Literal rules never have capture groups, so their replacement is used
// verbatim; regex rules resolve backreferences against the span's captures.
func (p *Pattern) Expand(s string, sp Span) string {
	if p.literal {
		return p.Rule.To
	}
	return string(p.re.ExpandString(nil, p.template, s, sp.groups))
}

// String returns the rule in "from -> to" form for messages.
func (p *Pattern) String() string {
	return p.Rule.From + " -> " + p.Rule.To
}

// Compile turns rules into an ordered pattern list. Original rules come
// before their case-variant expansions, with each rule's variants grouped
// immediately after it. An invalid regex fails the whole compile with an
// error naming the offending rule.
func Compile(rules []Rule, opts Options) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(rules))
	for i, rule := range rules {
		if rule.From == "" {
			return nil, errors.Errorf("rule %d: from is required", i)
		}

		p, err := compileOne(rule, opts, false)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)

		if !opts.PreserveCase {
			continue
		}
		for _, pair := range casing.ExpandPair(rule.From, rule.To) {
			if pair[0] == rule.From && pair[1] == rule.To {
				continue // already covered by the original
			}
			variant := Rule{From: pair[0], To: pair[1]}
			// Variants are case-specific by construction, so they never
			// carry the ignore-case flag.
			vp, err := compileOne(variant, Options{
				Literal:    opts.Literal,
				WordBreaks: opts.WordBreaks,
			}, true)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, vp)
		}
	}
	return patterns, nil
}

// compileOne compiles a single rule with the given flags.
func compileOne(rule Rule, opts Options, variant bool) (*Pattern, error) {
	expr := rule.From
	if opts.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if opts.WordBreaks {
		// Word-boundary assertions are meaningless next to non-word
		// characters, so only anchor ends that need it.
		if startsWithWordRune(rule.From) {
			expr = `\b` + expr
		}
		if endsWithWordRune(rule.From) {
			expr = expr + `\b`
		}
	}
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", rule.From, err)
	}

	p := &Pattern{
		Rule:    rule,
		Variant: variant,
		re:      re,
		literal: opts.Literal,
	}
	if !opts.Literal {
		p.template = translateTemplate(rule.To)
	}
	return p, nil
}

// translateTemplate converts sed-style backreferences (\1, \2, ...) to Go's
// expand syntax (${1}) and escapes characters Go would otherwise interpret.
func translateTemplate(to string) string {
	var b strings.Builder
	for i := 0; i < len(to); i++ {
		c := to[i]
		switch {
		case c == '\\' && i+1 < len(to) && to[i+1] >= '0' && to[i+1] <= '9':
			b.WriteString("${")
			b.WriteByte(to[i+1])
			b.WriteString("}")
			i++
		case c == '\\' && i+1 < len(to) && to[i+1] == '\\':
			b.WriteByte('\\')
			i++
		case c == '$':
			b.WriteString("$$")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func startsWithWordRune(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && isWordRune(r)
}

func endsWithWordRune(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && isWordRune(r)
}

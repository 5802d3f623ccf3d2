package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/swaprc/pkg/pattern"
)

func compile(t *testing.T, opts pattern.Options, rules ...pattern.Rule) []*pattern.Pattern {
	t.Helper()
	pats, err := pattern.Compile(rules, opts)
	require.NoError(t, err)
	return pats
}

func TestApply_Swap(t *testing.T) {
	// Both patterns see the original buffer: a swap rule set must never
	// produce "A A" or "B B".
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "foo", To: "bar"},
		pattern.Rule{From: "bar", To: "foo"},
	)

	res := Apply(pats, "foo bar", true)
	assert.Equal(t, "bar foo", res.Output)
	assert.Equal(t, 2, res.Matches)
	assert.Equal(t, 0, res.OverlapsSkipped)
}

func TestApply_EarliestPatternWinsAtSameOffset(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "ab", To: "X"},
		pattern.Rule{From: "abc", To: "Y"},
	)

	res := Apply(pats, "abc", true)
	assert.Equal(t, "Xc", res.Output)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 1, res.OverlapsSkipped)
}

func TestApply_OverlapResolvedLeftToRight(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "bcd", To: "X"},
		pattern.Rule{From: "ab", To: "Y"},
	)

	// "ab" starts earlier, wins; "bcd" overlaps the accepted span and is
	// skipped with no partial replacement.
	res := Apply(pats, "abcd", true)
	assert.Equal(t, "Ycd", res.Output)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 1, res.OverlapsSkipped)
}

func TestApply_HumptyDumptyCaseSensitive(t *testing.T) {
	// Lowercase-only literal rules must not touch differently-cased text.
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "humpty", To: "dumpty"},
		pattern.Rule{From: "dumpty", To: "humpty"},
	)

	res := Apply(pats, "Humpty Dumpty", true)
	assert.Equal(t, "Humpty Dumpty", res.Output)
	assert.Equal(t, 0, res.Matches)

	res = Apply(pats, "humpty dumpty", true)
	assert.Equal(t, "dumpty humpty", res.Output)
	assert.Equal(t, 2, res.Matches)
}

func TestApply_CasePreservingFamily(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true, PreserveCase: true},
		pattern.Rule{From: "my_var", To: "my_function"},
	)

	tests := map[string]string{
		"my_var": "my_function",
		"MY_VAR": "MY_FUNCTION",
		"myVar":  "myFunction",
		"MyVar":  "MyFunction",
	}
	for input, want := range tests {
		res := Apply(pats, input, true)
		assert.Equal(t, want, res.Output, "input %q", input)
		assert.Equal(t, 1, res.Matches, "input %q", input)
	}
}

func TestApply_Backreferences(t *testing.T) {
	pats := compile(t, pattern.Options{},
		pattern.Rule{From: `(\w+)\.example\.com`, To: `\1.example.org`},
	)

	res := Apply(pats, "http://api.example.com/x", true)
	assert.Equal(t, "http://api.example.org/x", res.Output)
}

func TestApply_LineModeDoesNotCrossNewlines(t *testing.T) {
	pats := compile(t, pattern.Options{},
		pattern.Rule{From: `a.b`, To: "X"},
	)

	// "." cannot match the newline when matching is scoped per line.
	input := "a\nb"
	res := Apply(pats, input, false)
	assert.Equal(t, input, res.Output)
	assert.Equal(t, 0, res.Matches)

	res = Apply(pats, input, true)
	assert.Equal(t, 0, res.Matches, "regexp dot does not match newline without (?s)")

	pats = compile(t, pattern.Options{}, pattern.Rule{From: `(?s)a.b`, To: "X"})
	res = Apply(pats, input, true)
	assert.Equal(t, "X", res.Output)
}

func TestApply_LineModePreservesTerminators(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "cat", To: "dog"},
	)

	res := Apply(pats, "cat\ncat\ncat", false)
	assert.Equal(t, "dog\ndog\ndog", res.Output)
	assert.Equal(t, 3, res.Matches)

	res = Apply(pats, "cat\n", false)
	assert.Equal(t, "dog\n", res.Output)
}

func TestApply_EmptyInput(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true}, pattern.Rule{From: "x", To: "y"})

	for _, atOnce := range []bool{true, false} {
		res := Apply(pats, "", atOnce)
		assert.Equal(t, "", res.Output)
		assert.Equal(t, 0, res.Matches)
	}
}

func TestApply_CountsAreDeterministic(t *testing.T) {
	pats := compile(t, pattern.Options{Literal: true},
		pattern.Rule{From: "aa", To: "b"},
	)

	// "aaa": self-scan finds non-overlapping [0,2); the tail "a" has no
	// second candidate, so exactly one match.
	res := Apply(pats, "aaa", true)
	assert.Equal(t, "ba", res.Output)
	assert.Equal(t, 1, res.Matches)
}

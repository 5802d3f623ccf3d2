// Package rewrite applies an ordered pattern list to a buffer in one
// simultaneous pass. Every pattern scans the original input; no pattern
// ever sees another pattern's output, which is what makes swap rule sets
// (a→b, b→a) safe without intermediate names.
package rewrite

import (
	"sort"
	"strings"

	"github.com/walteh/swaprc/pkg/pattern"
)

// 📊 Result is the outcome of one substitution pass.
type Result struct {
	Output          string
	Matches         int // accepted spans
	OverlapsSkipped int // candidate spans rejected by overlap resolution
}

// Changed reports whether the pass produced a different buffer.
func (r Result) Changed(input string) bool {
	return r.Output != input
}

// Apply runs all patterns against input simultaneously. When atOnce is
// false the buffer is split on line boundaries and each line is matched
// independently, so no pattern can match across a newline.
func Apply(patterns []*pattern.Pattern, input string, atOnce bool) Result {
	if atOnce {
		return applyScope(patterns, input)
	}

	var out strings.Builder
	out.Grow(len(input))
	total := Result{}
	for _, piece := range strings.SplitAfter(input, "\n") {
		line, term := piece, ""
		if strings.HasSuffix(piece, "\n") {
			line, term = piece[:len(piece)-1], "\n"
		}
		res := applyScope(patterns, line)
		out.WriteString(res.Output)
		out.WriteString(term)
		total.Matches += res.Matches
		total.OverlapsSkipped += res.OverlapsSkipped
	}
	total.Output = out.String()
	return total
}

// applyScope resolves one scope (whole buffer or a single line).
//
// Overlap resolution is left-to-right: a candidate span is accepted if it
// does not overlap an already-accepted span; among spans starting at the
// same offset the earliest pattern wins. Rejected spans are counted and
// otherwise have no effect.
func applyScope(patterns []*pattern.Pattern, scope string) Result {
	var spans []pattern.Span
	for i, p := range patterns {
		for _, sp := range p.Find(scope) {
			sp.Pattern = i
			spans = append(spans, sp)
		}
	}
	if len(spans) == 0 {
		return Result{Output: scope}
	}

	sort.SliceStable(spans, func(a, b int) bool {
		if spans[a].Start != spans[b].Start {
			return spans[a].Start < spans[b].Start
		}
		return spans[a].Pattern < spans[b].Pattern
	})

	var out strings.Builder
	out.Grow(len(scope))
	res := Result{}
	next := 0           // first offset not yet consumed by an accepted span
	lastStart := -1     // start of the most recently accepted span
	for _, sp := range spans {
		// Same-start comparison matters for zero-width spans, which do not
		// advance next.
		if sp.Start < next || sp.Start == lastStart {
			res.OverlapsSkipped++
			continue
		}
		out.WriteString(scope[next:sp.Start])
		out.WriteString(patterns[sp.Pattern].Expand(scope, sp))
		next = sp.End
		lastStart = sp.Start
		res.Matches++
	}
	out.WriteString(scope[next:])
	res.Output = out.String()
	return res
}

// Package casing classifies identifier case styles and re-renders word
// sequences into other styles. It backs the preserve-case expansion of
// pattern rules: one declared rule fans out into snake/camel variants.
package casing

import (
	"regexp"
	"strings"
	"unicode"
)

// Style is the case convention of an identifier.
type Style int

const (
	StyleUnknown    Style = iota
	StyleLowerSnake       // my_var
	StyleUpperSnake       // MY_VAR
	StyleLowerCamel       // myVar
	StyleUpperCamel       // MyVar
)

// String returns a string representation of Style
func (s Style) String() string {
	switch s {
	case StyleLowerSnake:
		return "lower_snake"
	case StyleUpperSnake:
		return "upper_snake"
	case StyleLowerCamel:
		return "lower_camel"
	case StyleUpperCamel:
		return "upper_camel"
	default:
		return "unknown"
	}
}

var (
	lowerSnakeRe = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)
	upperSnakeRe = regexp.MustCompile(`^[A-Z0-9]+(_[A-Z0-9]+)*$`)
)

// Classify determines the case style of s from its shape alone.
// Ambiguous single-word identifiers ("myvar") classify as lower_snake
// because the snake checks run first.
func Classify(s string) Style {
	if s == "" {
		return StyleUnknown
	}
	if lowerSnakeRe.MatchString(s) {
		return StyleLowerSnake
	}
	if upperSnakeRe.MatchString(s) {
		return StyleUpperSnake
	}
	if strings.ContainsRune(s, '_') {
		return StyleUnknown
	}
	first := []rune(s)[0]
	if unicode.IsUpper(first) {
		return StyleUpperCamel
	}
	if unicode.IsLower(first) && strings.IndexFunc(s[1:], unicode.IsUpper) >= 0 {
		return StyleLowerCamel
	}
	return StyleUnknown
}

// SplitWords tokenizes s into lowercase word parts according to style.
// Snake styles split on underscores; camel styles split before each
// uppercase letter.
func SplitWords(s string, style Style) []string {
	switch style {
	case StyleLowerSnake, StyleUpperSnake:
		parts := strings.Split(s, "_")
		words := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				words = append(words, strings.ToLower(p))
			}
		}
		return words
	case StyleLowerCamel, StyleUpperCamel:
		var words []string
		var cur strings.Builder
		for _, r := range s {
			if unicode.IsUpper(r) && cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
			cur.WriteRune(unicode.ToLower(r))
		}
		if cur.Len() > 0 {
			words = append(words, cur.String())
		}
		return words
	default:
		return []string{s}
	}
}

// Render reassembles lowercase word parts into the target style.
func Render(words []string, style Style) string {
	switch style {
	case StyleLowerSnake:
		return strings.Join(words, "_")
	case StyleUpperSnake:
		upper := make([]string, len(words))
		for i, w := range words {
			upper[i] = strings.ToUpper(w)
		}
		return strings.Join(upper, "_")
	case StyleUpperCamel:
		var b strings.Builder
		for _, w := range words {
			b.WriteString(capitalize(w))
		}
		return b.String()
	case StyleLowerCamel:
		var b strings.Builder
		for i, w := range words {
			if i == 0 {
				b.WriteString(w)
			} else {
				b.WriteString(capitalize(w))
			}
		}
		return b.String()
	default:
		return strings.Join(words, "")
	}
}

// capitalize uppercases the first rune of w.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// expandStyles is the fan-out order for preserve-case expansion. The order
// is stable so derived rules keep a deterministic tie-break priority.
var expandStyles = []Style{StyleLowerSnake, StyleUpperSnake, StyleLowerCamel, StyleUpperCamel}

// ExpandPair derives the case-variant family of a (from, to) rule. If from
// cannot be classified, the pair is returned unchanged. Otherwise both sides
// are split using from's style and re-rendered in each of the four styles,
// deduplicating identical results.
//
// Word counts of from and to are not required to match; rendering proceeds
// positionally either way (a 2-word pattern with a 3-word replacement is
// allowed, not an error).
func ExpandPair(from, to string) [][2]string {
	style := Classify(from)
	if style == StyleUnknown {
		return [][2]string{{from, to}}
	}

	fromWords := SplitWords(from, style)
	toWords := SplitWords(to, style)

	seen := make(map[[2]string]bool)
	pairs := make([][2]string, 0, len(expandStyles))
	for _, target := range expandStyles {
		pair := [2]string{Render(fromWords, target), Render(toWords, target)}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

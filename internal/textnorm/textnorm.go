// Package textnorm provides the text cleanup, identity-key, and token-overlap
// helpers used by the recommendation pipeline. All functions are pure.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// headingPattern matches leading markdown heading markers ("## Title").
var headingPattern = regexp.MustCompile(`^#{1,6}\s+`)

// titleTrimSet covers punctuation commonly left on section headings by
// upstream parsers (bullets, colons, stray emphasis underscores).
const titleTrimSet = ".,;:!?-–—_*#'\"()[]{}"

// Clean collapses all whitespace runs to single spaces, normalizes
// non-breaking spaces, and strips markdown emphasis and heading markers.
// Returns "" for input with no visible content.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = headingPattern.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.NewReplacer("**", "", "__", "", "*", "", "`", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// TrimTitle cleans a section heading and strips leading/trailing punctuation
// so that "**Introduction:**" and "Introduction" render identically.
func TrimTitle(s string) string {
	return strings.Trim(Clean(s), titleTrimSet)
}

// Key returns the normalized identity of s: cleaned, casefolded, with all
// punctuation removed and tokens joined by single spaces. Two strings with
// the same Key are treated as the same text by the pipeline.
func Key(s string) string {
	return strings.Join(tokenize(s), " ")
}

// Tokens returns the set of normalized word tokens of s.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// Overlap returns the Jaccard similarity of the two texts' token sets.
// Returns 0 when either side has no tokens.
func Overlap(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenize(s string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(Clean(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// Package scoring implements the speech metrics engine: it converts a
// transcript plus timing and reference data into normalized 0–100 scores
// across metrics (transcription precision, speaking rate, filler-word rate,
// lexical variability) and aggregates them into named dimensions.
//
// The engine is synchronous and stateless per call; its only shared state is
// the [Resources] cache holding the metric configuration, the filler-word
// set, and the optional part-of-speech tagging capability. Callers that must
// not block (e.g. an HTTP dispatch loop) are responsible for running
// [Engine.Compute] off their hot path.
package scoring

import (
	"regexp"
	"strings"
)

// tokenPattern matches every maximal run of characters that are neither word
// characters (letters, digits, underscore) nor apostrophes. Such runs are
// collapsed into a single separator before splitting.
var tokenPattern = regexp.MustCompile(`[^\p{L}\p{N}_']+`)

// Tokenize normalizes text into a sequence of lowercase word tokens:
// punctuation is stripped, internal apostrophes are preserved, and the result
// is split on whitespace. Empty input yields an empty slice.
//
// Every component in this package that needs token counts uses this exact
// rule, so precision and filler-count metrics are computed over the same
// token stream.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	text = tokenPattern.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

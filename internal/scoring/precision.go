package scoring

import "github.com/antzucaro/matchr"

// Precision computes the position-aligned word match ratio between a
// hypothesis transcript and a reference transcript, as a raw percentage in
// [0, 100].
//
// Both strings are tokenized with [Tokenize]; tokens are compared position by
// position up to the shorter token count, and the match count is divided by
// the hypothesis token count. An empty hypothesis returns 0 regardless of the
// reference.
//
// This is deliberately a positional comparison, not an edit-distance
// alignment: an inserted or dropped word shifts every subsequent comparison
// out of sync. Downstream score thresholds are calibrated against these exact
// semantics, so they must not change. [WordEditDistance] exposes an
// alignment-aware distance for diagnostic purposes.
func Precision(hypothesis, reference string) float64 {
	hypTokens := Tokenize(hypothesis)
	n := len(hypTokens)
	if n == 0 {
		return 0
	}

	refTokens := Tokenize(reference)
	aligned := n
	if len(refTokens) < aligned {
		aligned = len(refTokens)
	}

	matches := 0
	for i := 0; i < aligned; i++ {
		if hypTokens[i] == refTokens[i] {
			matches++
		}
	}
	return 100 * float64(matches) / float64(n)
}

// WordEditDistance returns the word-level Levenshtein distance between the
// two transcripts: the minimum number of single-word insertions, deletions,
// and substitutions needed to turn the hypothesis token stream into the
// reference token stream.
//
// Each distinct token is mapped to a private-use rune so that the
// character-level Levenshtein implementation operates on whole words. The
// result is informational only — it never contributes to a metric score.
func WordEditDistance(hypothesis, reference string) int {
	hypTokens := Tokenize(hypothesis)
	refTokens := Tokenize(reference)

	ids := make(map[string]rune, len(hypTokens)+len(refTokens))
	encode := func(tokens []string) string {
		rs := make([]rune, len(tokens))
		for i, tok := range tokens {
			r, ok := ids[tok]
			if !ok {
				// Private Use Area codepoints keep encoded words distinct
				// from any real text.
				r = rune(0xE000 + len(ids))
				ids[tok] = r
			}
			rs[i] = r
		}
		return string(rs)
	}

	return matchr.Levenshtein(encode(hypTokens), encode(refTokens))
}

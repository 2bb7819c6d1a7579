// Package pos defines the Tagger interface for part-of-speech tagging backends.
//
// A POS tagger annotates free text with per-token grammatical information:
// a part-of-speech class, a lemma, and a stopword flag. The lexical
// variability analyzer consumes this output to weight word repetition
// differently for content words (nouns, verbs, adjectives) than for function
// words (determiners, prepositions, conjunctions).
//
// Taggers are typically expensive to construct (they load a language model)
// and cheap to invoke, so a single Tagger instance is held in the scoring
// resource cache for the lifetime of the process. Implementations must be
// safe for concurrent use after construction.
package pos

import "context"

// Tagger is the abstraction over any part-of-speech tagging backend.
//
// Implementations must be safe for concurrent use. Tag must not retain the
// returned slice; callers own it.
type Tagger interface {
	// Tag annotates text and returns one Token per recognised token, in
	// document order. An empty or whitespace-only text yields an empty slice
	// and a nil error.
	Tag(ctx context.Context, text string) ([]Token, error)
}

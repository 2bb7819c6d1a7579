package pos

// Universal part-of-speech class names emitted by taggers. These follow the
// Universal Dependencies tag set so that weight tables remain portable across
// backends.
const (
	Noun         = "NOUN"
	ProperNoun   = "PROPN"
	Verb         = "VERB"
	Auxiliary    = "AUX"
	Adjective    = "ADJ"
	Adverb       = "ADV"
	Determiner   = "DET"
	Adposition   = "ADP"
	Pronoun      = "PRON"
	CoordConj    = "CCONJ"
	SubordConj   = "SCONJ"
	Particle     = "PART"
	Interjection = "INTJ"
	Numeral      = "NUM"
	Symbol       = "SYM"
	Punctuation  = "PUNCT"
	Other        = "X"
)

// Token is a single annotated token produced by a [Tagger].
type Token struct {
	// Text is the surface form as it appeared in the input.
	Text string

	// Lemma is the dictionary form of the token, lowercased. Backends
	// without a lemmatizer fall back to the lowercased surface form.
	Lemma string

	// POS is the universal part-of-speech class (e.g. [Noun], [Verb]).
	// Backends map their native tag sets onto these values; unknown tags
	// map to [Other].
	POS string

	// IsAlpha reports whether the token consists entirely of letters.
	// Non-alphabetic tokens (numbers, punctuation) are discarded by the
	// lexical analyzer.
	IsAlpha bool

	// IsStop reports whether the token is a stopword in the tagger's language.
	IsStop bool
}

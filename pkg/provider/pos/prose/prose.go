// Package prose implements the [pos.Tagger] interface on top of
// github.com/jdkato/prose/v2 with an in-process statistical part-of-speech
// model.
//
// prose emits Penn Treebank tags; this package maps them onto the Universal
// Dependencies classes declared in the pos package so that weight tables stay
// backend-agnostic. prose ships no lemmatizer, so Lemma falls back to the
// lowercased surface form, and the stopword flag comes from a bundled
// Spanish + English word list. The bundled model is trained on English text;
// for Spanish input the tagging is approximate and deployments that need
// higher fidelity can plug in a different [pos.Tagger] backend.
//
// Constructing a Tagger loads the model into memory, which is comparatively
// expensive; construct once and reuse. Tagging itself is cheap and safe for
// concurrent use.
package prose

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	proselib "github.com/jdkato/prose/v2"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
)

// Tagger implements [pos.Tagger] backed by the prose document pipeline.
// All methods are safe for concurrent use.
type Tagger struct {
	stopwords map[string]struct{}
}

var _ pos.Tagger = (*Tagger)(nil)

// Option is a functional option for configuring a [Tagger].
type Option func(*Tagger)

// WithExtraStopwords adds words to the bundled stopword list. Words are
// matched case-insensitively against the token's lowercased surface form.
func WithExtraStopwords(words ...string) Option {
	return func(t *Tagger) {
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				t.stopwords[w] = struct{}{}
			}
		}
	}
}

// New returns a [Tagger] ready for use. The prose model itself is loaded
// lazily by the library on the first document, so New is cheap; the first
// Tag call pays the model load cost.
func New(opts ...Option) *Tagger {
	t := &Tagger{
		stopwords: make(map[string]struct{}, len(defaultStopwords)),
	}
	for _, w := range defaultStopwords {
		t.stopwords[w] = struct{}{}
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tag implements [pos.Tagger]. It tokenises and tags text with the prose
// pipeline (extraction and sentence segmentation disabled, as only token
// tags are needed) and converts each token to the universal representation.
func (t *Tagger) Tag(ctx context.Context, text string) ([]pos.Token, error) {
	if strings.TrimSpace(text) == "" {
		return []pos.Token{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := proselib.NewDocument(text,
		proselib.WithExtraction(false),
		proselib.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose tagger: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]pos.Token, 0, len(raw))
	for _, tok := range raw {
		lower := strings.ToLower(tok.Text)
		_, stop := t.stopwords[lower]
		tokens = append(tokens, pos.Token{
			Text:    tok.Text,
			Lemma:   lower,
			POS:     universalTag(tok.Tag),
			IsAlpha: isAlpha(tok.Text),
			IsStop:  stop,
		})
	}
	return tokens, nil
}

// universalTag maps a Penn Treebank tag onto the Universal Dependencies
// class names used by [pos.Token.POS]. Unknown tags map to [pos.Other].
func universalTag(penn string) string {
	switch penn {
	case "NN", "NNS":
		return pos.Noun
	case "NNP", "NNPS":
		return pos.ProperNoun
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		return pos.Verb
	case "MD":
		return pos.Auxiliary
	case "JJ", "JJR", "JJS":
		return pos.Adjective
	case "RB", "RBR", "RBS", "WRB":
		return pos.Adverb
	case "DT", "PDT", "WDT":
		return pos.Determiner
	case "IN":
		return pos.Adposition
	case "PRP", "PRP$", "WP", "WP$", "EX":
		return pos.Pronoun
	case "CC":
		return pos.CoordConj
	case "TO", "RP", "POS":
		return pos.Particle
	case "UH":
		return pos.Interjection
	case "CD":
		return pos.Numeral
	case "SYM", "$", "#":
		return pos.Symbol
	case ".", ",", ":", "''", "``", "-LRB-", "-RRB-", "(", ")":
		return pos.Punctuation
	default:
		return pos.Other
	}
}

// isAlpha reports whether s is non-empty and consists entirely of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// defaultStopwords is the bundled Spanish + English stopword list. It covers
// the high-frequency function words that dominate spoken transcripts; the
// list does not need to be exhaustive because per-POS weighting already keeps
// function-word classes from dominating the variability score.
var defaultStopwords = []string{
	// Spanish
	"el", "la", "los", "las", "un", "una", "unos", "unas",
	"de", "del", "a", "al", "en", "por", "para", "con", "sin", "sobre",
	"y", "e", "o", "u", "ni", "que", "como", "cuando", "donde", "porque",
	"si", "no", "sí", "se", "su", "sus", "mi", "mis", "tu", "tus",
	"yo", "tú", "él", "ella", "ellos", "ellas", "nosotros", "usted", "ustedes",
	"me", "te", "le", "les", "lo", "nos", "os",
	"es", "son", "era", "eran", "ser", "estar", "está", "están", "estaba",
	"hay", "ha", "han", "he", "hemos", "muy", "más", "menos", "pero", "también",
	"este", "esta", "estos", "estas", "ese", "esa", "esos", "esas", "eso", "esto",
	// English
	"the", "a", "an", "of", "to", "in", "on", "at", "by", "for", "with",
	"and", "or", "but", "nor", "so", "as", "if", "than", "because",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their", "this", "that", "these", "those",
	"is", "am", "are", "was", "were", "be", "been", "being",
	"do", "does", "did", "have", "has", "had", "not", "no", "yes",
	"very", "too", "also", "there", "here", "what", "which", "who", "whom",
}

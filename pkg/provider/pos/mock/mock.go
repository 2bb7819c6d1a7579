// Package mock provides a test double for the pos.Tagger interface.
//
// Use Tagger in unit tests to feed controlled part-of-speech annotations into
// the lexical variability analyzer without loading a real language model.
//
// Example:
//
//	tg := &mock.Tagger{Tokens: []pos.Token{
//	    {Text: "hola", Lemma: "hola", POS: pos.Interjection, IsAlpha: true},
//	}}
//	toks, err := tg.Tag(ctx, "hola")
package mock

import (
	"context"
	"sync"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
)

// Tagger is a mock implementation of pos.Tagger.
// Zero values cause Tag to return an empty slice and a nil error.
type Tagger struct {
	mu sync.Mutex

	// Tokens is returned by Tag when TagFunc is nil.
	Tokens []pos.Token

	// Err, if non-nil, is returned as the error from Tag.
	Err error

	// TagFunc, when set, computes the result per call and takes precedence
	// over Tokens. Useful for input-dependent annotations.
	TagFunc func(text string) []pos.Token

	// Calls records the text argument of every Tag invocation.
	Calls []string
}

var _ pos.Tagger = (*Tagger)(nil)

// Tag implements pos.Tagger.
func (t *Tagger) Tag(_ context.Context, text string) ([]pos.Token, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, text)
	t.mu.Unlock()

	if t.Err != nil {
		return nil, t.Err
	}
	if t.TagFunc != nil {
		return t.TagFunc(text), nil
	}
	return t.Tokens, nil
}

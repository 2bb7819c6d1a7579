package prose

import (
	"context"
	"strings"
	"testing"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
)

func TestTag_EmptyInput(t *testing.T) {
	t.Parallel()
	tg := New()

	for _, text := range []string{"", "   ", "\n\t"} {
		toks, err := tg.Tag(context.Background(), text)
		if err != nil {
			t.Fatalf("Tag(%q) error: %v", text, err)
		}
		if len(toks) != 0 {
			t.Errorf("Tag(%q) = %d tokens, want 0", text, len(toks))
		}
	}
}

func TestTag_CancelledContext(t *testing.T) {
	t.Parallel()
	tg := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tg.Tag(ctx, "hola mundo"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestTag_TokenAnnotations(t *testing.T) {
	tg := New()

	toks, err := tg.Tag(context.Background(), "The students read 3 books.")
	if err != nil {
		t.Fatalf("Tag error: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("expected tokens")
	}

	byText := make(map[string]pos.Token, len(toks))
	for _, tok := range toks {
		byText[tok.Text] = tok

		if tok.Lemma != strings.ToLower(tok.Text) {
			t.Errorf("token %q lemma = %q, want lowercased surface form", tok.Text, tok.Lemma)
		}
	}

	the, ok := byText["The"]
	if !ok {
		t.Fatalf("token %q not found in %v", "The", toks)
	}
	if !the.IsStop {
		t.Error("token \"The\" should be flagged as a stopword")
	}
	if !the.IsAlpha {
		t.Error("token \"The\" should be alphabetic")
	}

	if num, ok := byText["3"]; ok && num.IsAlpha {
		t.Error("token \"3\" should not be alphabetic")
	}
	if dot, ok := byText["."]; ok && dot.POS != pos.Punctuation {
		t.Errorf("token \".\" POS = %q, want %q", dot.POS, pos.Punctuation)
	}
}

func TestTag_ExtraStopwords(t *testing.T) {
	tg := New(WithExtraStopwords(" Bacán ", ""))

	toks, err := tg.Tag(context.Background(), "bacán")
	if err != nil {
		t.Fatalf("Tag error: %v", err)
	}
	if len(toks) != 1 {
		t.Fatalf("got %d tokens, want 1", len(toks))
	}
	if !toks[0].IsStop {
		t.Error("extra stopword should be flagged case-insensitively")
	}
}

func TestUniversalTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		penn string
		want string
	}{
		{"NN", pos.Noun},
		{"NNS", pos.Noun},
		{"NNP", pos.ProperNoun},
		{"VBD", pos.Verb},
		{"MD", pos.Auxiliary},
		{"JJR", pos.Adjective},
		{"WRB", pos.Adverb},
		{"DT", pos.Determiner},
		{"IN", pos.Adposition},
		{"PRP$", pos.Pronoun},
		{"CC", pos.CoordConj},
		{"TO", pos.Particle},
		{"UH", pos.Interjection},
		{"CD", pos.Numeral},
		{"$", pos.Symbol},
		{",", pos.Punctuation},
		{"-LRB-", pos.Punctuation},
		{"FW", pos.Other},
		{"", pos.Other},
	}
	for _, tc := range cases {
		if got := universalTag(tc.penn); got != tc.want {
			t.Errorf("universalTag(%q) = %q, want %q", tc.penn, got, tc.want)
		}
	}
}

func TestIsAlpha(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"hola", true},
		{"Bacán", true},
		{"año", true},
		{"", false},
		{"3", false},
		{"don't", false},
		{"...", false},
	}
	for _, tc := range cases {
		if got := isAlpha(tc.in); got != tc.want {
			t.Errorf("isAlpha(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

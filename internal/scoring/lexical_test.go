package scoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
	posmock "github.com/altavoz-ai/altavoz/pkg/provider/pos/mock"
)

func word(text, class string, stop bool) pos.Token {
	return pos.Token{Text: text, Lemma: text, POS: class, IsAlpha: true, IsStop: stop}
}

func TestAnalyzeLexicalVariabilityAllUnique(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{Tokens: []pos.Token{
		word("perro", pos.Noun, false),
		word("corre", pos.Verb, false),
		word("rápido", pos.Adverb, false),
	}}

	stats, err := AnalyzeLexicalVariability(context.Background(), "perro corre rápido", tg, nil)
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	if stats.Score != 100 {
		t.Errorf("score = %g, want 100 when every lemma is unique", stats.Score)
	}
	if stats.Distinct1All != 1 || stats.Distinct1NoStopwords != 1 {
		t.Errorf("distinct ratios = %g / %g, want 1 / 1", stats.Distinct1All, stats.Distinct1NoStopwords)
	}
	if stats.TokenCounts.Total != 3 || stats.TokenCounts.Content != 3 || stats.TokenCounts.Stopword != 0 {
		t.Errorf("unexpected token counts %+v", stats.TokenCounts)
	}
}

func TestAnalyzeLexicalVariabilitySingleRepeatedWord(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{Tokens: []pos.Token{
		word("casa", pos.Noun, false),
		word("casa", pos.Noun, false),
		word("casa", pos.Noun, false),
		word("casa", pos.Noun, false),
	}}

	stats, err := AnalyzeLexicalVariability(context.Background(), "casa casa casa casa", tg, nil)
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	// One class with penalty 1 - 1/4 = 0.75 and full weight, so the score is
	// 100 * (1 - 0.75) = 25.
	if math.Abs(stats.Score-25) > 1e-9 {
		t.Errorf("score = %g, want 25", stats.Score)
	}
	ns := stats.POSStats[pos.Noun]
	if ns.Count != 4 || ns.UniqueLemmas != 1 {
		t.Errorf("noun stat = %+v, want count 4 with 1 unique lemma", ns)
	}
	if math.Abs(ns.RepetitionPenalty-0.75) > 1e-9 {
		t.Errorf("repetition penalty = %g, want 0.75", ns.RepetitionPenalty)
	}
}

func TestAnalyzeLexicalVariabilityRepetitionDrivesScoreDown(t *testing.T) {
	t.Parallel()
	// A single lemma repeated n times in one class yields penalty 1 - 1/n,
	// so the score is 100/n and tends to 0 as repetition grows.
	prev := 101.0
	for _, n := range []int{2, 4, 10, 50} {
		toks := make([]pos.Token, n)
		for i := range toks {
			toks[i] = word("casa", pos.Noun, false)
		}
		tg := &posmock.Tagger{Tokens: toks}
		stats, err := AnalyzeLexicalVariability(context.Background(), "casa", tg, nil)
		if err != nil {
			t.Fatalf("AnalyzeLexicalVariability(n=%d): %v", n, err)
		}
		want := 100.0 / float64(n)
		if math.Abs(stats.Score-want) > 1e-9 {
			t.Errorf("n=%d: score = %g, want %g", n, stats.Score, want)
		}
		if stats.Score >= prev {
			t.Errorf("n=%d: score %g did not decrease from %g", n, stats.Score, prev)
		}
		prev = stats.Score
	}
}

func TestAnalyzeLexicalVariabilityWeighting(t *testing.T) {
	t.Parallel()
	// Four repeated determiners (low weight) and four unique nouns (high
	// weight): the heavy class dominates, so the score stays high.
	tg := &posmock.Tagger{Tokens: []pos.Token{
		word("el", pos.Determiner, true),
		word("el", pos.Determiner, true),
		word("el", pos.Determiner, true),
		word("el", pos.Determiner, true),
		word("perro", pos.Noun, false),
		word("gato", pos.Noun, false),
		word("casa", pos.Noun, false),
		word("calle", pos.Noun, false),
	}}

	stats, err := AnalyzeLexicalVariability(context.Background(), "el el el el perro gato casa calle", tg, nil)
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	// Determiner: penalty 0.75, weight 0.2. Noun: penalty 0, weight 1.8.
	// Global penalty = (0.2*0.75 + 1.8*0) / 2.0 = 0.075, score = 92.5.
	if math.Abs(stats.Score-92.5) > 1e-9 {
		t.Errorf("score = %g, want 92.5", stats.Score)
	}
	if stats.TokenCounts.Stopword != 4 {
		t.Errorf("stopword count = %d, want 4", stats.TokenCounts.Stopword)
	}
	if stats.Distinct1StopwordsOnly != 0.25 {
		t.Errorf("stopword distinct ratio = %g, want 0.25", stats.Distinct1StopwordsOnly)
	}
}

func TestAnalyzeLexicalVariabilityWeightOverrides(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{Tokens: []pos.Token{
		word("casa", pos.Noun, false),
		word("casa", pos.Noun, false),
	}}

	stats, err := AnalyzeLexicalVariability(context.Background(), "casa casa", tg,
		map[string]float64{pos.Noun: 0.5})
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	if got := stats.POSStats[pos.Noun].Weight; got != 0.5 {
		t.Errorf("overridden noun weight = %g, want 0.5", got)
	}
	// A single class always carries the full normalized weight, so the
	// override changes the recorded weight but not the score here.
	if math.Abs(stats.Score-50) > 1e-9 {
		t.Errorf("score = %g, want 50", stats.Score)
	}
}

func TestAnalyzeLexicalVariabilityEmptyInput(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{}

	stats, err := AnalyzeLexicalVariability(context.Background(), "", tg, nil)
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	if stats.Score != 0 || stats.TokenCounts.Total != 0 {
		t.Errorf("expected zeroed stats for empty input, got %+v", stats)
	}
	if len(tg.Calls) != 0 {
		t.Errorf("tagger was invoked %d times for empty input, want 0", len(tg.Calls))
	}
}

func TestAnalyzeLexicalVariabilityNonAlphabeticOnly(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{Tokens: []pos.Token{
		{Text: "123", POS: pos.Numeral, IsAlpha: false},
		{Text: "!", POS: pos.Punctuation, IsAlpha: false},
	}}

	stats, err := AnalyzeLexicalVariability(context.Background(), "123 !", tg, nil)
	if err != nil {
		t.Fatalf("AnalyzeLexicalVariability: %v", err)
	}
	if stats.Score != 0 || len(stats.POSStats) != 0 {
		t.Errorf("expected zeroed stats when no alphabetic token survives, got %+v", stats)
	}
}

func TestAnalyzeLexicalVariabilityTaggerError(t *testing.T) {
	t.Parallel()
	tg := &posmock.Tagger{Err: errors.New("model not loaded")}

	_, err := AnalyzeLexicalVariability(context.Background(), "hola", tg, nil)
	if err == nil {
		t.Fatal("expected error when the tagger fails")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error %q does not wrap the tagger failure", err)
	}
}

package scoring

import (
	"context"
	"fmt"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
)

// defaultPOSWeights assigns each part-of-speech class its repetition-penalty
// weight. Content classes are weighted high because repeating a noun or verb
// signals poor vocabulary; function classes are weighted low because
// repeating "el" or "de" is normal speech. Unrecognised classes default to 1.
var defaultPOSWeights = map[string]float64{
	pos.Noun:       1.8,
	pos.ProperNoun: 1.8,
	pos.Verb:       1.5,
	pos.Auxiliary:  1.0,
	pos.Adjective:  1.4,
	pos.Adverb:     1.1,

	pos.Determiner:   0.2,
	pos.Adposition:   0.2,
	pos.Pronoun:      0.3,
	pos.CoordConj:    0.2,
	pos.SubordConj:   0.2,
	pos.Particle:     0.2,
	pos.Interjection: 0.3,
	pos.Numeral:      0.5,
	pos.Symbol:       0.1,
	pos.Punctuation:  0.0,
	pos.Other:        0.5,
}

// POSStat holds per part-of-speech repetition information.
// RepetitionPenalty is 1 - DistinctRatio and always lies in [0, 1].
type POSStat struct {
	Count             int     `json:"count"`
	UniqueLemmas      int     `json:"unique_lemmas"`
	DistinctRatio     float64 `json:"distinct_ratio"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	Weight            float64 `json:"weight"`
}

// TokenCounts reports how the analyzed tokens split into content words and
// stopwords.
type TokenCounts struct {
	Total    int `json:"total_tokens"`
	Content  int `json:"content_tokens"`
	Stopword int `json:"stopword_tokens"`
}

// LexicalStats is the full output of [AnalyzeLexicalVariability]. The
// distinct-1 ratios are unique-lemma counts divided by token counts over the
// respective token group; Score is the 0–100 weighted variability score
// (higher = more varied vocabulary).
type LexicalStats struct {
	Distinct1All           float64            `json:"distinct_1_all"`
	Distinct1NoStopwords   float64            `json:"distinct_1_no_stopwords"`
	Distinct1StopwordsOnly float64            `json:"distinct_1_stopwords_only"`
	Score                  float64            `json:"lexical_variability_score"`
	POSStats               map[string]POSStat `json:"pos_stats"`
	TokenCounts            TokenCounts        `json:"token_counts"`
	WeightsUsed            map[string]float64 `json:"weights_used"`
}

// zeroLexicalStats returns the fully-zeroed result used for empty or
// all-non-alphabetic input.
func zeroLexicalStats(overrides map[string]float64) *LexicalStats {
	weights := make(map[string]float64, len(overrides))
	for k, v := range overrides {
		weights[k] = v
	}
	return &LexicalStats{
		POSStats:    map[string]POSStat{},
		WeightsUsed: weights,
	}
}

// AnalyzeLexicalVariability measures vocabulary variety in text using the
// injected POS tagging capability:
//
//  1. tagger annotates the text; non-alphabetic tokens are discarded;
//  2. tokens are partitioned into content words and stopwords and a
//     distinct-1 ratio (unique lemmas / tokens) is computed for all tokens,
//     content-only, and stopwords-only;
//  3. tokens are grouped by POS class; each class gets a repetition penalty
//     of 1 - distinct ratio;
//  4. the global penalty is the weight-normalized average of per-class
//     penalties using [defaultPOSWeights] merged with weightOverrides, and
//     the final score is clamp(100 * (1 - penalty), 0, 100).
//
// Empty or all-non-alphabetic input returns a fully-zeroed result rather
// than an error; the analyzer only fails when the tagger itself fails.
func AnalyzeLexicalVariability(
	ctx context.Context,
	text string,
	tagger pos.Tagger,
	weightOverrides map[string]float64,
) (*LexicalStats, error) {
	if text == "" {
		return zeroLexicalStats(weightOverrides), nil
	}

	tagged, err := tagger.Tag(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("scoring: lexical analysis: %w", err)
	}

	// Keep only alphabetic tokens (no punctuation, numbers, symbols).
	tokens := tagged[:0:0]
	for _, t := range tagged {
		if t.IsAlpha {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return zeroLexicalStats(weightOverrides), nil
	}

	lemma := func(t pos.Token) string {
		if t.Lemma != "" {
			return t.Lemma
		}
		return t.Text
	}

	distinctRatio := func(ts []pos.Token) float64 {
		if len(ts) == 0 {
			return 0
		}
		unique := make(map[string]struct{}, len(ts))
		for _, t := range ts {
			unique[lemma(t)] = struct{}{}
		}
		return float64(len(unique)) / float64(len(ts))
	}

	var content, stop []pos.Token
	for _, t := range tokens {
		if t.IsStop {
			stop = append(stop, t)
		} else {
			content = append(content, t)
		}
	}

	// Per-POS grouping.
	lemmasByPOS := make(map[string][]string)
	for _, t := range tokens {
		lemmasByPOS[t.POS] = append(lemmasByPOS[t.POS], lemma(t))
	}

	weights := make(map[string]float64, len(defaultPOSWeights)+len(weightOverrides))
	for k, v := range defaultPOSWeights {
		weights[k] = v
	}
	for k, v := range weightOverrides {
		weights[k] = v
	}

	posStats := make(map[string]POSStat, len(lemmasByPOS))
	var totalWeight, weightedPenalty float64
	for class, lemmas := range lemmasByPOS {
		unique := make(map[string]struct{}, len(lemmas))
		for _, l := range lemmas {
			unique[l] = struct{}{}
		}
		ratio := float64(len(unique)) / float64(len(lemmas))
		penalty := 1 - ratio

		w, ok := weights[class]
		if !ok {
			w = 1.0
		}
		totalWeight += w
		weightedPenalty += w * penalty

		posStats[class] = POSStat{
			Count:             len(lemmas),
			UniqueLemmas:      len(unique),
			DistinctRatio:     ratio,
			RepetitionPenalty: penalty,
			Weight:            w,
		}
	}

	var globalPenalty float64
	if totalWeight > 0 {
		globalPenalty = weightedPenalty / totalWeight
	}

	score := (1 - globalPenalty) * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &LexicalStats{
		Distinct1All:           distinctRatio(tokens),
		Distinct1NoStopwords:   distinctRatio(content),
		Distinct1StopwordsOnly: distinctRatio(stop),
		Score:                  score,
		POSStats:               posStats,
		TokenCounts: TokenCounts{
			Total:    len(tokens),
			Content:  len(content),
			Stopword: len(stop),
		},
		WeightsUsed: weights,
	}, nil
}

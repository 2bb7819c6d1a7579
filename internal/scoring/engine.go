package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/altavoz-ai/altavoz/internal/observe"
)

// Wire-stable metric names. Downstream consumers (grading UI, stored metric
// rows) key off these exact strings.
const (
	MetricPrecision          = "precision_transcription"
	MetricWordsPerMinute     = "words_per_minute"
	MetricFillerPerMinute    = "filler_word_per_minute"
	MetricLexicalVariability = "lexical_variability"
)

// Wire-stable dimension names.
const (
	DimensionClarity    = "clarity"
	DimensionRhythm     = "rhythm"
	DimensionVocabulary = "vocabulary"
)

// MetricResult pairs a metric's raw measurement with its normalized score.
type MetricResult struct {
	Raw   float64 `json:"raw"`
	Score float64 `json:"score"`
}

// RawCounts carries pre-computed counts supplied by the caller. Nil fields
// are derived from the transcription instead.
type RawCounts struct {
	NumWords       *int `json:"num_words,omitempty"`
	NumFillerWords *int `json:"num_filler_words,omitempty"`
}

// Input is everything [Engine.Compute] needs for one report.
type Input struct {
	// AudioMS is the audio duration in milliseconds. Values <= 0 disable
	// the rate metrics.
	AudioMS int64

	// Transcription is the hypothesis transcript. Optional.
	Transcription string

	// ReferenceTranscription is the golden transcript for the precision
	// metric. Optional.
	ReferenceTranscription string

	// Summary is a fallback text for lexical analysis when Transcription is
	// empty. Optional.
	Summary string

	// RawCounts overrides derived counts when set.
	RawCounts RawCounts

	// POSWeightOverrides merges into the default per-class weight table for
	// the lexical variability analyzer. Optional.
	POSWeightOverrides map[string]float64
}

// Metadata describes how a report was produced. Field names are part of the
// engine's output schema and must stay stable.
type Metadata struct {
	AudioMS                          int64         `json:"audio_ms"`
	NumWords                         *int          `json:"num_words"`
	NumFillerWords                   *int          `json:"num_filler_words"`
	FillerWordsPerMinute             *float64      `json:"filler_words_per_minute"`
	UsedSummaryForLexicalVariability bool          `json:"used_summary_for_lexical_variability"`
	LexicalVariabilitySource         string        `json:"lexical_variability_source,omitempty"`
	SkippedMetrics                   []string      `json:"skipped_metrics"`
	LexicalDetails                   *LexicalStats `json:"lexical_details,omitempty"`

	// WordEditDistance is a purely informational word-level Levenshtein
	// distance between the transcription and the reference. It never
	// contributes to any score.
	WordEditDistance *int `json:"word_edit_distance,omitempty"`
}

// Report is the engine output: per-metric results, per-dimension means, and
// computation metadata. Never mutated after construction.
type Report struct {
	Metrics    map[string]MetricResult `json:"metrics"`
	Dimensions map[string]*float64     `json:"dimensions"`
	Metadata   Metadata                `json:"metadata"`
}

// EngineOption is a functional option for [NewEngine].
type EngineOption func(*Engine)

// WithObserveMetrics attaches OTel instruments so the engine records
// computation latency and per-metric outcomes. Nil (the default) disables
// instrumentation.
func WithObserveMetrics(m *observe.Metrics) EngineOption {
	return func(e *Engine) { e.obs = m }
}

// Engine is the metrics orchestrator. It is stateless per call apart from
// read access to its [Resources] cache and is safe for concurrent use.
//
// Compute is CPU-bound and synchronous; callers that must not block a
// dispatch loop run it on their own worker goroutine.
type Engine struct {
	res *Resources
	obs *observe.Metrics
}

// NewEngine creates an Engine reading from res.
func NewEngine(res *Resources, opts ...EngineOption) *Engine {
	e := &Engine{res: res}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compute assembles a [Report] from in.
//
// Inputs not explicitly supplied are derived: num_words from the tokenized
// transcription, num_filler_words by running the filler counter over it.
// Each of the four metrics is computed only when its configuration exists and
// its required inputs are present; otherwise the metric name is recorded in
// metadata.skipped_metrics and omitted from the metrics map entirely — a
// skipped metric never appears with a null score.
//
// An unexpected failure inside a single metric's computation does not abort
// the report: the failure is logged and the metric is treated as skipped.
// Compute returns an error only when the metric configuration itself is
// unavailable (wrapping [ErrResourceUnavailable]) or malformed
// ([*InvalidConfigError]).
func (e *Engine) Compute(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()
	if e.obs != nil {
		e.obs.ActiveComputations.Add(ctx, 1)
		defer func() {
			e.obs.ActiveComputations.Add(ctx, -1)
			e.obs.ScoringDuration.Record(ctx, time.Since(start).Seconds())
		}()
	}

	params, err := e.res.Parameters()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Metrics: make(map[string]MetricResult, 4),
		Metadata: Metadata{
			AudioMS:        in.AudioMS,
			SkippedMetrics: []string{},
		},
	}

	// --- Basic counts ---

	numWords := in.RawCounts.NumWords
	if numWords == nil && in.Transcription != "" {
		n := len(Tokenize(in.Transcription))
		numWords = &n
	}
	report.Metadata.NumWords = numWords

	numFillers := in.RawCounts.NumFillerWords
	if numFillers == nil && in.Transcription != "" {
		// A missing filler-word list only disables this count; the metric
		// is then skipped below rather than failing the report.
		if fillers, ferr := e.res.FillerWords(); ferr == nil {
			n := CountFillerWords(in.Transcription, fillers)
			numFillers = &n
		} else {
			slog.Warn("filler words unavailable; filler metric will be skipped", "err", ferr)
		}
	}
	report.Metadata.NumFillerWords = numFillers

	// --- Per-metric computation ---

	var firstErr error
	record := func(name string, ready bool, compute func() (float64, error)) {
		if firstErr != nil {
			return
		}
		cfg, configured := params.Metrics[name]
		if !configured || !ready {
			e.skip(ctx, report, name)
			return
		}

		raw, err := e.guarded(name, compute)
		if err != nil {
			var cfgErr *InvalidConfigError
			if errors.As(err, &cfgErr) {
				firstErr = err
				return
			}
			slog.Error("metric computation failed; skipping", "metric", name, "err", err)
			if e.obs != nil {
				e.obs.RecordMetricOutcome(ctx, name, "failed")
			}
			report.Metadata.SkippedMetrics = append(report.Metadata.SkippedMetrics, name)
			return
		}

		score, err := Normalize(raw, cfg.MinValue, cfg.MaxValue, cfg.IdealMin, cfg.IdealMax)
		if err != nil {
			firstErr = err
			return
		}

		report.Metrics[name] = MetricResult{
			Raw:   round4(raw),
			Score: round2(score),
		}
		if e.obs != nil {
			e.obs.RecordMetricOutcome(ctx, name, "computed")
		}
	}

	// 1) Transcription precision.
	record(MetricPrecision,
		in.Transcription != "" && in.ReferenceTranscription != "",
		func() (float64, error) {
			d := WordEditDistance(in.Transcription, in.ReferenceTranscription)
			report.Metadata.WordEditDistance = &d
			return Precision(in.Transcription, in.ReferenceTranscription), nil
		})

	// 2) Words per minute.
	record(MetricWordsPerMinute,
		numWords != nil,
		func() (float64, error) {
			wpm, ok := WordsPerMinute(in.AudioMS, *numWords)
			if !ok {
				return 0, fmt.Errorf("audio duration %dms yields no rate", in.AudioMS)
			}
			return wpm, nil
		})

	// 3) Filler words per minute.
	record(MetricFillerPerMinute,
		numFillers != nil,
		func() (float64, error) {
			fpm, ok := FillerWordsPerMinute(in.AudioMS, *numFillers)
			if !ok {
				return 0, fmt.Errorf("audio duration %dms yields no rate", in.AudioMS)
			}
			rounded := round4(fpm)
			report.Metadata.FillerWordsPerMinute = &rounded
			return fpm, nil
		})

	// 4) Lexical variability.
	textForLex := in.Transcription
	if textForLex == "" && in.Summary != "" {
		textForLex = in.Summary
		report.Metadata.UsedSummaryForLexicalVariability = true
	}
	tagger, taggerOK := e.res.Tagger()
	record(MetricLexicalVariability,
		textForLex != "" && taggerOK,
		func() (float64, error) {
			stats, err := AnalyzeLexicalVariability(ctx, textForLex, tagger, in.POSWeightOverrides)
			if err != nil {
				return 0, err
			}
			report.Metadata.LexicalDetails = stats
			report.Metadata.LexicalVariabilitySource = "distinct_1_no_stopwords"
			return stats.Distinct1NoStopwords, nil
		})

	if firstErr != nil {
		return nil, firstErr
	}

	// --- Dimensions ---
	report.Dimensions = AggregateDimensions(report.Metrics, params.Dimensions)

	return report, nil
}

// skip records name as skipped in the report metadata.
func (e *Engine) skip(ctx context.Context, report *Report, name string) {
	report.Metadata.SkippedMetrics = append(report.Metadata.SkippedMetrics, name)
	if e.obs != nil {
		e.obs.RecordMetricOutcome(ctx, name, "skipped")
	}
}

// guarded runs compute and converts a panic into an error so that one
// misbehaving metric cannot abort the whole report.
func (e *Engine) guarded(name string, compute func() (float64, error)) (raw float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("metric %s panicked: %v", name, r)
		}
	}()
	return compute()
}

// round4 rounds to 4 decimal places (raw values at the report boundary).
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds to 2 decimal places (scores and dimension means).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

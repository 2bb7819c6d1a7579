// Package grading applies per-stage scoring policy, persists exercise
// results, and aggregates stored metric rows into final session scores.
//
// Stages model the learner's progression: stage 1 is a read-aloud exercise
// with a reference transcript, stages 2 and 3 are spontaneous speech. Which
// metrics count, and which dimensions they roll up into, depends on the
// stage.
package grading

import (
	"fmt"

	"github.com/altavoz-ai/altavoz/internal/scoring"
)

// Known stage IDs.
const (
	StageReadAloud   = 1
	StageGuided      = 2
	StageSpontaneous = 3
)

// wordsPerSecond is the speaking-rate assumption used to estimate audio
// duration when no word timings are available (~150 words per minute).
const wordsPerSecond = 2.5

// ValidateStage returns an error for stage IDs outside [1, 3].
func ValidateStage(stageID int) error {
	if stageID < StageReadAloud || stageID > StageSpontaneous {
		return fmt.Errorf("grading: stage_id must be 1, 2, or 3, got %d", stageID)
	}
	return nil
}

// StageMetrics returns the metric names that count for stageID. The
// read-aloud stage scores transcription precision against the reference
// text; later stages have no reference and score lexical variability
// instead.
func StageMetrics(stageID int) []string {
	if stageID == StageReadAloud {
		return []string{
			scoring.MetricPrecision,
			scoring.MetricWordsPerMinute,
			scoring.MetricFillerPerMinute,
		}
	}
	return []string{
		scoring.MetricWordsPerMinute,
		scoring.MetricFillerPerMinute,
		scoring.MetricLexicalVariability,
	}
}

// StageDimensions returns the dimension layout for stageID: dimension name
// to the ordered metric names contributing to it. Rhythm is common to all
// stages; clarity only exists in the read-aloud stage and vocabulary only in
// the later ones.
func StageDimensions(stageID int) map[string][]string {
	if stageID == StageReadAloud {
		return map[string][]string{
			scoring.DimensionClarity: {scoring.MetricPrecision},
			scoring.DimensionRhythm:  {scoring.MetricWordsPerMinute, scoring.MetricFillerPerMinute},
		}
	}
	return map[string][]string{
		scoring.DimensionRhythm:     {scoring.MetricWordsPerMinute, scoring.MetricFillerPerMinute},
		scoring.DimensionVocabulary: {scoring.MetricLexicalVariability},
	}
}

// ApplyStagePolicy filters a full engine report down to the metrics that
// count for stageID and re-aggregates dimensions with the stage's layout.
func ApplyStagePolicy(metrics map[string]scoring.MetricResult, stageID int) (map[string]scoring.MetricResult, map[string]*float64) {
	filtered := scoring.FilterMetrics(metrics, StageMetrics(stageID))
	dims := scoring.AggregateDimensions(filtered, StageDimensions(stageID))
	return filtered, dims
}

// EstimateDurationMS estimates audio duration in milliseconds from a word
// count, assuming an average speaking rate. Used when the transcript carries
// no word timings. Returns 0 for non-positive word counts.
func EstimateDurationMS(wordCount int) int64 {
	if wordCount <= 0 {
		return 0
	}
	return int64(float64(wordCount) / wordsPerSecond * 1000)
}

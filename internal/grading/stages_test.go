package grading

import (
	"reflect"
	"testing"

	"github.com/altavoz-ai/altavoz/internal/scoring"
)

func TestValidateStage(t *testing.T) {
	t.Parallel()

	for _, valid := range []int{1, 2, 3} {
		if err := ValidateStage(valid); err != nil {
			t.Errorf("ValidateStage(%d) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []int{0, -1, 4, 100} {
		if err := ValidateStage(invalid); err == nil {
			t.Errorf("ValidateStage(%d) expected error, got nil", invalid)
		}
	}
}

func TestStageMetrics(t *testing.T) {
	t.Parallel()

	got := StageMetrics(StageReadAloud)
	want := []string{
		scoring.MetricPrecision,
		scoring.MetricWordsPerMinute,
		scoring.MetricFillerPerMinute,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StageMetrics(1) = %v, want %v", got, want)
	}

	want = []string{
		scoring.MetricWordsPerMinute,
		scoring.MetricFillerPerMinute,
		scoring.MetricLexicalVariability,
	}
	for _, stage := range []int{StageGuided, StageSpontaneous} {
		got := StageMetrics(stage)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("StageMetrics(%d) = %v, want %v", stage, got, want)
		}
	}
}

func TestStageDimensions(t *testing.T) {
	t.Parallel()

	stage1 := StageDimensions(StageReadAloud)
	if _, ok := stage1[scoring.DimensionClarity]; !ok {
		t.Error("stage 1 dimensions missing clarity")
	}
	if _, ok := stage1[scoring.DimensionVocabulary]; ok {
		t.Error("stage 1 dimensions should not include vocabulary")
	}

	stage2 := StageDimensions(StageGuided)
	if _, ok := stage2[scoring.DimensionClarity]; ok {
		t.Error("stage 2 dimensions should not include clarity")
	}
	if _, ok := stage2[scoring.DimensionVocabulary]; !ok {
		t.Error("stage 2 dimensions missing vocabulary")
	}
	wantRhythm := []string{scoring.MetricWordsPerMinute, scoring.MetricFillerPerMinute}
	if !reflect.DeepEqual(stage2[scoring.DimensionRhythm], wantRhythm) {
		t.Errorf("stage 2 rhythm metrics = %v, want %v", stage2[scoring.DimensionRhythm], wantRhythm)
	}
}

func TestApplyStagePolicy_Stage1DropsLexical(t *testing.T) {
	t.Parallel()

	full := map[string]scoring.MetricResult{
		scoring.MetricPrecision:          {Raw: 83.3333, Score: 92.59},
		scoring.MetricWordsPerMinute:     {Raw: 145, Score: 100},
		scoring.MetricFillerPerMinute:    {Raw: 2, Score: 100},
		scoring.MetricLexicalVariability: {Raw: 0.9, Score: 90},
	}

	metrics, dims := ApplyStagePolicy(full, StageReadAloud)

	if _, ok := metrics[scoring.MetricLexicalVariability]; ok {
		t.Error("stage 1 metrics should not include lexical_variability")
	}
	if len(metrics) != 3 {
		t.Errorf("stage 1 metrics count = %d, want 3", len(metrics))
	}

	if dims[scoring.DimensionClarity] == nil || *dims[scoring.DimensionClarity] != 92.59 {
		t.Errorf("clarity = %v, want 92.59", dims[scoring.DimensionClarity])
	}
	if dims[scoring.DimensionRhythm] == nil || *dims[scoring.DimensionRhythm] != 100 {
		t.Errorf("rhythm = %v, want 100", dims[scoring.DimensionRhythm])
	}
	if _, ok := dims[scoring.DimensionVocabulary]; ok {
		t.Error("stage 1 dimensions should not include vocabulary")
	}
}

func TestApplyStagePolicy_Stage3DropsPrecision(t *testing.T) {
	t.Parallel()

	full := map[string]scoring.MetricResult{
		scoring.MetricPrecision:          {Raw: 83.3333, Score: 92.59},
		scoring.MetricWordsPerMinute:     {Raw: 120, Score: 90},
		scoring.MetricFillerPerMinute:    {Raw: 5, Score: 70},
		scoring.MetricLexicalVariability: {Raw: 0.9, Score: 90},
	}

	metrics, dims := ApplyStagePolicy(full, StageSpontaneous)

	if _, ok := metrics[scoring.MetricPrecision]; ok {
		t.Error("stage 3 metrics should not include precision_transcription")
	}
	if _, ok := dims[scoring.DimensionClarity]; ok {
		t.Error("stage 3 dimensions should not include clarity")
	}
	if dims[scoring.DimensionRhythm] == nil || *dims[scoring.DimensionRhythm] != 80 {
		t.Errorf("rhythm = %v, want 80", dims[scoring.DimensionRhythm])
	}
	if dims[scoring.DimensionVocabulary] == nil || *dims[scoring.DimensionVocabulary] != 90 {
		t.Errorf("vocabulary = %v, want 90", dims[scoring.DimensionVocabulary])
	}
}

func TestApplyStagePolicy_MissingMetricYieldsNilDimension(t *testing.T) {
	t.Parallel()

	full := map[string]scoring.MetricResult{
		scoring.MetricWordsPerMinute:  {Raw: 120, Score: 90},
		scoring.MetricFillerPerMinute: {Raw: 5, Score: 70},
	}

	_, dims := ApplyStagePolicy(full, StageReadAloud)

	if dims[scoring.DimensionClarity] != nil {
		t.Errorf("clarity = %v, want nil when precision was skipped", dims[scoring.DimensionClarity])
	}
	if dims[scoring.DimensionRhythm] == nil || *dims[scoring.DimensionRhythm] != 80 {
		t.Errorf("rhythm = %v, want 80", dims[scoring.DimensionRhythm])
	}
}

func TestEstimateDurationMS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		words int
		want  int64
	}{
		{150, 60000}, // 150 words at 2.5 w/s is one minute
		{25, 10000},
		{1, 400},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := EstimateDurationMS(tt.words); got != tt.want {
			t.Errorf("EstimateDurationMS(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

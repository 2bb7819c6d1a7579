package scoring

import (
	"reflect"
	"testing"
)

func TestAggregateDimensions(t *testing.T) {
	t.Parallel()
	metrics := map[string]MetricResult{
		MetricPrecision:       {Raw: 83.3333, Score: 92.59},
		MetricWordsPerMinute:  {Raw: 150, Score: 100},
		MetricFillerPerMinute: {Raw: 2, Score: 80},
	}
	dimensions := map[string][]string{
		DimensionClarity:    {MetricPrecision},
		DimensionRhythm:     {MetricWordsPerMinute, MetricFillerPerMinute},
		DimensionVocabulary: {MetricLexicalVariability},
	}

	got := AggregateDimensions(metrics, dimensions)

	if got[DimensionClarity] == nil || *got[DimensionClarity] != 92.59 {
		t.Errorf("clarity = %v, want 92.59", got[DimensionClarity])
	}
	if got[DimensionRhythm] == nil || *got[DimensionRhythm] != 90 {
		t.Errorf("rhythm = %v, want 90", got[DimensionRhythm])
	}
	if got[DimensionVocabulary] != nil {
		t.Errorf("vocabulary = %v, want nil when every constituent metric is absent", *got[DimensionVocabulary])
	}
}

func TestAggregateDimensionsRounding(t *testing.T) {
	t.Parallel()
	metrics := map[string]MetricResult{
		"a": {Score: 33.33},
		"b": {Score: 33.34},
		"c": {Score: 33.34},
	}
	got := AggregateDimensions(metrics, map[string][]string{"d": {"a", "b", "c"}})
	if got["d"] == nil || *got["d"] != 33.34 {
		t.Errorf("mean = %v, want 33.34", got["d"])
	}
}

func TestAggregateDimensionsPartialMetrics(t *testing.T) {
	t.Parallel()
	// A skipped metric is absent from the map and must not drag the mean down.
	metrics := map[string]MetricResult{
		MetricWordsPerMinute: {Score: 100},
	}
	got := AggregateDimensions(metrics, map[string][]string{
		DimensionRhythm: {MetricWordsPerMinute, MetricFillerPerMinute},
	})
	if got[DimensionRhythm] == nil || *got[DimensionRhythm] != 100 {
		t.Errorf("rhythm = %v, want 100 from the single present metric", got[DimensionRhythm])
	}
}

func TestFilterMetrics(t *testing.T) {
	t.Parallel()
	metrics := map[string]MetricResult{
		MetricPrecision:          {Score: 90},
		MetricWordsPerMinute:     {Score: 100},
		MetricLexicalVariability: {Score: 70},
	}

	got := FilterMetrics(metrics, []string{MetricWordsPerMinute, MetricFillerPerMinute})
	want := map[string]MetricResult{
		MetricWordsPerMinute: {Score: 100},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterMetrics = %v, want %v", got, want)
	}
}

package scoring

import (
	"math"
	"testing"
)

func TestWordsPerMinute(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		audioMS  int64
		numWords int
		want     float64
		wantOK   bool
	}{
		{"one minute", 60000, 150, 150, true},
		{"half minute", 30000, 75, 150, true},
		{"two minutes", 120000, 150, 75, true},
		{"zero words", 60000, 0, 0, true},
		{"zero duration", 0, 150, 0, false},
		{"negative duration", -500, 150, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := WordsPerMinute(tt.audioMS, tt.numWords)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WordsPerMinute(%d, %d) = %g, want %g", tt.audioMS, tt.numWords, got, tt.want)
			}
		})
	}
}

func TestFillerWordsPerMinute(t *testing.T) {
	t.Parallel()

	got, ok := FillerWordsPerMinute(90000, 6)
	if !ok {
		t.Fatal("expected a rate for a positive duration")
	}
	if math.Abs(got-4) > 1e-9 {
		t.Errorf("FillerWordsPerMinute(90000, 6) = %g, want 4", got)
	}

	if _, ok := FillerWordsPerMinute(0, 6); ok {
		t.Error("expected no rate for zero duration")
	}
}

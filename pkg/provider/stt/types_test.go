package stt

import "testing"

func TestTranscriptDurationMS(t *testing.T) {
	t.Parallel()

	tr := &Transcript{Words: []Word{
		{Text: "hola", Start: 0.12, End: 0.55},
		{Text: "mundo", Start: 0.6, End: 1.12},
	}}
	ms, ok := tr.DurationMS()
	if !ok {
		t.Fatal("expected a duration from timed words")
	}
	if ms != 1000 {
		t.Errorf("duration = %dms, want 1000", ms)
	}
}

func TestTranscriptDurationMSNoWords(t *testing.T) {
	t.Parallel()

	tr := &Transcript{Text: "hola mundo"}
	if _, ok := tr.DurationMS(); ok {
		t.Error("expected no duration without word timings")
	}
}

func TestTranscriptDurationMSZeroSpan(t *testing.T) {
	t.Parallel()

	tr := &Transcript{Words: []Word{{Text: "hola", Start: 1.0, End: 1.0}}}
	if _, ok := tr.DurationMS(); ok {
		t.Error("expected no duration for a zero-length span")
	}
}

package stt

// Word kinds reported by backends that annotate their word stream.
const (
	WordTypeWord       = "word"
	WordTypeSpacing    = "spacing"
	WordTypeAudioEvent = "audio_event"
)

// Transcript represents a batch speech-to-text result from an STT backend.
type Transcript struct {
	// Text is the full transcribed speech content.
	Text string

	// LanguageCode is the detected or requested language (e.g., "spa").
	LanguageCode string

	// LanguageProbability is the backend's confidence in LanguageCode
	// (0.0–1.0). Zero if the backend does not report it.
	LanguageProbability float64

	// Words contains per-word timing detail when available. May be empty for
	// backends without word-level output.
	Words []Word
}

// Word holds per-word metadata from STT backends that support it.
type Word struct {
	// Text is the word surface form (or the event label for audio events).
	Text string

	// Start and End are offsets from the beginning of the recording, in
	// seconds.
	Start float64
	End   float64

	// Type is one of the WordType constants. Empty means WordTypeWord.
	Type string

	// SpeakerID identifies the speaker when diarization is active.
	SpeakerID string
}

// DurationMS derives the audio duration in milliseconds from the word
// timings: the span from the first word's start to the last word's end. The
// boolean result is false when the transcript carries no timing detail.
func (t *Transcript) DurationMS() (int64, bool) {
	if len(t.Words) == 0 {
		return 0, false
	}
	span := t.Words[len(t.Words)-1].End - t.Words[0].Start
	if span <= 0 {
		return 0, false
	}
	return int64(span * 1000), true
}

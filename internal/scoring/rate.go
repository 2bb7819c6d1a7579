package scoring

// msPerMinute converts audio durations in milliseconds to minutes.
const msPerMinute = 60000.0

// WordsPerMinute derives the speaking rate from the audio duration and word
// count. The boolean result is false when no rate can be derived, i.e. when
// audioMS <= 0. No rounding is applied here; the orchestrator rounds once at
// its boundary.
func WordsPerMinute(audioMS int64, numWords int) (float64, bool) {
	if audioMS <= 0 {
		return 0, false
	}
	return float64(numWords) / (float64(audioMS) / msPerMinute), true
}

// FillerWordsPerMinute derives the filler-word rate from the audio duration
// and filler count. Same contract as [WordsPerMinute].
func FillerWordsPerMinute(audioMS int64, numFillerWords int) (float64, bool) {
	if audioMS <= 0 {
		return 0, false
	}
	return float64(numFillerWords) / (float64(audioMS) / msPerMinute), true
}

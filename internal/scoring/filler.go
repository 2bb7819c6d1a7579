package scoring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// FillerWordSet is a set of normalized (lowercased, trimmed) single-token
// filler words such as "eh", "emm", "um". Immutable after load.
type FillerWordSet map[string]struct{}

// Contains reports whether the normalized form of word is in the set.
func (s FillerWordSet) Contains(word string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// NewFillerWordSet builds a [FillerWordSet] from words, normalizing each
// entry and discarding empty strings.
func NewFillerWordSet(words []string) FillerWordSet {
	set := make(FillerWordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// LoadFillerWords reads the JSON filler-word file at path. Two document
// shapes are accepted: a bare array of strings, or an object with a
// "filler_words" key holding the array.
func LoadFillerWords(path string) (FillerWordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scoring: open filler words %q: %w", path, err)
	}
	defer f.Close()

	set, err := LoadFillerWordsFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scoring: parse filler words %q: %w", path, err)
	}
	return set, nil
}

// LoadFillerWordsFromReader decodes a filler-word document from r.
// See [LoadFillerWords] for the accepted shapes.
func LoadFillerWordsFromReader(r io.Reader) (FillerWordSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err == nil {
		return NewFillerWordSet(words), nil
	}

	var wrapped struct {
		FillerWords []string `json:"filler_words"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode json: document must be a string array or an object with a filler_words key: %w", err)
	}
	return NewFillerWordSet(wrapped.FillerWords), nil
}

// CountFillerWords tokenizes text with [Tokenize] and counts tokens present
// in set. Matching is case-insensitive and exact per single token; multi-word
// fillers are not detected. A repeated filler counts once per occurrence.
// Empty input returns 0.
func CountFillerWords(text string, set FillerWordSet) int {
	if text == "" || len(set) == 0 {
		return 0
	}
	count := 0
	for _, tok := range Tokenize(text) {
		if _, ok := set[tok]; ok {
			count++
		}
	}
	return count
}

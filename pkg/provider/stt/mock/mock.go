// Package mock provides a test double for the stt.Transcriber interface.
//
// Use Transcriber in unit tests to feed controlled transcripts into the HTTP
// layer without a live STT backend.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/altavoz-ai/altavoz/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Filename is the filename hint passed to Transcribe.
	Filename string
	// Audio is the full content read from the audio reader.
	Audio []byte
}

// Transcriber is a mock implementation of stt.Transcriber.
// Zero values cause Transcribe to return an empty transcript and nil error.
type Transcriber struct {
	mu sync.Mutex

	// Result is returned by Transcribe.
	Result *stt.Transcript

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

var _ stt.Transcriber = (*Transcriber)(nil)

// Transcribe implements stt.Transcriber. It drains the audio reader so
// callers streaming from a pipe do not block.
func (t *Transcriber) Transcribe(_ context.Context, audio io.Reader, filename string) (*stt.Transcript, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.Calls = append(t.Calls, TranscribeCall{Filename: filename, Audio: data})
	result, terr := t.Result, t.Err
	t.mu.Unlock()

	if terr != nil {
		return nil, terr
	}
	if result == nil {
		return &stt.Transcript{}, nil
	}
	return result, nil
}

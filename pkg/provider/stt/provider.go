// Package stt defines the Transcriber interface for Speech-to-Text backends.
//
// An STT provider wraps a batch transcription service (e.g., ElevenLabs
// Scribe) and exposes a uniform interface: callers hand over a complete audio
// recording and receive a [Transcript] with the recognized text and, when the
// backend supports it, per-word timing detail. There is no streaming surface;
// exercises are recorded first and scored afterwards.
//
// Implementations must be safe for concurrent use. Multiple transcriptions
// may be in flight simultaneously (one per submitted exercise).
package stt

import (
	"context"
	"io"
)

// Transcriber is the abstraction over any batch STT backend.
type Transcriber interface {
	// Transcribe submits the complete audio recording read from audio and
	// blocks until the backend returns a transcript or ctx is cancelled.
	// filename is a hint for the backend's content sniffing (e.g.
	// "recording.mp3"); it carries no semantics beyond the extension.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcript, error)
}

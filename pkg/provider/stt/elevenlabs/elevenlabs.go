// Package elevenlabs provides an ElevenLabs-backed STT transcriber using the
// Scribe batch speech-to-text API. It implements the stt.Transcriber
// interface.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/altavoz-ai/altavoz/pkg/provider/stt"
)

const (
	defaultBaseURL  = "https://api.elevenlabs.io"
	sttPath         = "/v1/speech-to-text"
	defaultModel    = "scribe_v1"
	defaultLanguage = "spa"
)

// Option is a functional option for configuring the ElevenLabs Transcriber.
type Option func(*Transcriber)

// WithModel sets the ElevenLabs STT model ID (e.g., "scribe_v1").
func WithModel(model string) Option {
	return func(t *Transcriber) {
		t.model = model
	}
}

// WithLanguage sets the ISO 639-2/639-3 language code sent with each request
// (e.g., "spa"). An empty string lets the backend auto-detect.
func WithLanguage(code string) Option {
	return func(t *Transcriber) {
		t.language = code
	}
}

// WithBaseURL overrides the API base URL. Used by tests pointed at a local
// httptest server.
func WithBaseURL(url string) Option {
	return func(t *Transcriber) {
		t.baseURL = url
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transcriber) {
		t.httpClient = c
	}
}

// WithDiarization toggles speaker diarization. Enabled by default.
func WithDiarization(on bool) Option {
	return func(t *Transcriber) {
		t.diarize = on
	}
}

// Transcriber implements stt.Transcriber backed by the ElevenLabs Scribe API.
type Transcriber struct {
	apiKey     string
	model      string
	language   string
	baseURL    string
	diarize    bool
	httpClient *http.Client
}

var _ stt.Transcriber = (*Transcriber)(nil)

// New creates a new ElevenLabs Transcriber. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	t := &Transcriber{
		apiKey:     apiKey,
		model:      defaultModel,
		language:   defaultLanguage,
		baseURL:    defaultBaseURL,
		diarize:    true,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// ---- API response types ----

// sttResponse is the JSON document returned by POST /v1/speech-to-text.
type sttResponse struct {
	LanguageCode        string     `json:"language_code"`
	LanguageProbability float64    `json:"language_probability"`
	Text                string     `json:"text"`
	Words               []sttWord  `json:"words"`
}

// sttWord is a single entry in the response word stream.
type sttWord struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id"`
}

// Transcribe implements stt.Transcriber. It uploads the audio as a multipart
// form and decodes the transcript from the response.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (*stt.Transcript, error) {
	if filename == "" {
		filename = "audio"
	}

	body, contentType, err := t.buildRequestBody(audio, filename)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+sttPath, body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: new request: %w", err)
	}
	req.Header.Set("xi-api-key", t.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: transcribe HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: transcribe: unexpected status %d: %s", resp.StatusCode, detail)
	}

	var sr sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("elevenlabs: transcribe decode: %w", err)
	}
	return convertResponse(&sr), nil
}

// buildRequestBody assembles the multipart form: the audio file plus the
// model, language, and diarization fields.
func (t *Transcriber) buildRequestBody(audio io.Reader, filename string) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := t.writeForm(mw, audio, filename)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), nil
}

func (t *Transcriber) writeForm(mw *multipart.Writer, audio io.Reader, filename string) error {
	if err := mw.WriteField("model_id", t.model); err != nil {
		return err
	}
	if t.language != "" {
		if err := mw.WriteField("language_code", t.language); err != nil {
			return err
		}
	}
	if err := mw.WriteField("diarize", strconv.FormatBool(t.diarize)); err != nil {
		return err
	}
	if err := mw.WriteField("tag_audio_events", "true"); err != nil {
		return err
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, audio)
	return err
}

// convertResponse maps the API document onto the provider-neutral transcript.
// Spacing entries are dropped: they carry no text useful to scoring and would
// distort word counting downstream.
func convertResponse(sr *sttResponse) *stt.Transcript {
	out := &stt.Transcript{
		Text:                sr.Text,
		LanguageCode:        sr.LanguageCode,
		LanguageProbability: sr.LanguageProbability,
	}
	for _, w := range sr.Words {
		if w.Type == stt.WordTypeSpacing {
			continue
		}
		typ := w.Type
		if typ == "" {
			typ = stt.WordTypeWord
		}
		out.Words = append(out.Words, stt.Word{
			Text:      w.Text,
			Start:     w.Start,
			End:       w.End,
			Type:      typ,
			SpeakerID: w.SpeakerID,
		})
	}
	return out
}

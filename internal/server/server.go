// Package server exposes the scoring engine over HTTP.
//
// Routes:
//
//   - POST /transcript          — multipart audio upload: transcribe, score,
//     apply the stage policy, persist, respond.
//   - POST /metrics             — compute a metrics report for an already
//     transcribed text.
//   - GET  /sessions/{id}/scores — final aggregated session scores with
//     feedback.
//   - GET  /healthz, /readyz    — liveness and readiness probes.
//   - GET  /metrics             — Prometheus scrape endpoint.
//
// Engine computations are CPU-bound, so they run under a weighted semaphore
// that caps concurrency; requests beyond the cap queue until a slot frees up
// or the client goes away.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"

	"github.com/altavoz-ai/altavoz/internal/grading"
	"github.com/altavoz-ai/altavoz/internal/health"
	"github.com/altavoz-ai/altavoz/internal/observe"
	"github.com/altavoz-ai/altavoz/internal/scoring"
	"github.com/altavoz-ai/altavoz/pkg/provider/stt"
)

// DefaultMaxConcurrentScoring caps simultaneous engine computations when no
// explicit limit is configured.
const DefaultMaxConcurrentScoring = 8

// maxUploadBytes caps the in-memory portion of a multipart audio upload.
const maxUploadBytes = 32 << 20

// Option is a functional option for [New].
type Option func(*Server)

// WithTranscriber enables the /transcript endpoint using t for
// speech-to-text. Without it the endpoint answers 503.
func WithTranscriber(t stt.Transcriber) Option {
	return func(s *Server) { s.stt = t }
}

// WithStore enables result persistence on /transcript.
func WithStore(store grading.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithScorer enables the /sessions/{id}/scores endpoint.
func WithScorer(sc *grading.Scorer) Option {
	return func(s *Server) { s.scorer = sc }
}

// WithObserveMetrics attaches OTel instruments and the HTTP middleware.
func WithObserveMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.obs = m }
}

// WithMaxConcurrentScoring sets the engine concurrency cap. Values <= 0 keep
// the default.
func WithMaxConcurrentScoring(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithHealthCheckers sets the readiness checks served on /readyz.
func WithHealthCheckers(checkers ...health.Checker) Option {
	return func(s *Server) { s.health = health.New(checkers...) }
}

// Server holds the HTTP handlers and their collaborators. Safe for
// concurrent use.
type Server struct {
	engine *scoring.Engine
	res    *scoring.Resources
	stt    stt.Transcriber
	store  grading.Store
	scorer *grading.Scorer
	obs    *observe.Metrics
	sem    *semaphore.Weighted
	health *health.Handler
}

// New creates a Server around engine and its resource cache.
func New(engine *scoring.Engine, res *scoring.Resources, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		res:    res,
		sem:    semaphore.NewWeighted(DefaultMaxConcurrentScoring),
		health: health.New(health.ResourcesChecker(res)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the route table. When observe metrics are attached the
// whole mux is wrapped in the tracing/logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /transcript", s.handleTranscript)
	mux.HandleFunc("POST /metrics", s.handleComputeMetrics)
	mux.HandleFunc("GET /sessions/{id}/scores", s.handleSessionScores)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	if s.obs != nil {
		return observe.Middleware(s.obs)(mux)
	}
	return mux
}

// ---------------------------------------------------------------------------
// POST /metrics
// ---------------------------------------------------------------------------

// computeRequest is the JSON body for POST /metrics.
type computeRequest struct {
	AudioMS                int64             `json:"audio_ms"`
	Transcription          string            `json:"transcription,omitempty"`
	ReferenceTranscription string            `json:"reference_transcription,omitempty"`
	Summary                string            `json:"summary,omitempty"`
	RawCounts              scoring.RawCounts `json:"raw_counts,omitempty"`
}

func (s *Server) handleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	report, err := s.compute(r, scoring.Input{
		AudioMS:                req.AudioMS,
		Transcription:          req.Transcription,
		ReferenceTranscription: req.ReferenceTranscription,
		Summary:                req.Summary,
		RawCounts:              req.RawCounts,
	})
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// compute runs one engine computation under the concurrency semaphore.
func (s *Server) compute(r *http.Request, in scoring.Input) (*scoring.Report, error) {
	ctx := r.Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	ctx, span := observe.StartSpan(ctx, "scoring.compute")
	defer span.End()
	return s.engine.Compute(ctx, in)
}

// writeComputeError maps engine errors to HTTP status codes.
func (s *Server) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrResourceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away while queued for a scoring slot.
		writeError(w, http.StatusServiceUnavailable, "scoring capacity exhausted")
	default:
		slog.Error("metrics computation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ---------------------------------------------------------------------------
// POST /transcript
// ---------------------------------------------------------------------------

// wordInfo is per-word timing detail in the transcript response.
type wordInfo struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// transcriptResponse is the JSON body returned by POST /transcript.
type transcriptResponse struct {
	Text       string                          `json:"text"`
	Words      []wordInfo                      `json:"words"`
	AudioMS    int64                           `json:"audio_ms"`
	NumWords   int                             `json:"n_words"`
	Metrics    map[string]scoring.MetricResult `json:"metrics"`
	Dimensions map[string]*float64             `json:"dimensions"`
	Metadata   scoring.Metadata                `json:"metadata"`
	Persisted  bool                            `json:"persisted"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "speech-to-text provider not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	stageID, err := formInt(r, "stage_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := grading.ValidateStage(int(stageID)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	ctx, span := observe.StartSpan(r.Context(), "stt.transcribe")
	sttStart := time.Now()
	transcript, err := s.stt.Transcribe(ctx, file, header.Filename)
	span.End()
	if s.obs != nil {
		s.obs.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
	}
	if err != nil {
		if s.obs != nil {
			s.obs.RecordProviderError(ctx, "stt", "transcribe")
		}
		observe.Logger(ctx).Error("transcription failed", "file", header.Filename, "err", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("transcription failed: %v", err))
		return
	}
	if s.obs != nil {
		s.obs.RecordProviderRequest(ctx, "stt", "transcribe", "ok")
	}

	numWords := len(strings.Fields(transcript.Text))
	audioMS, ok := transcript.DurationMS()
	if !ok {
		audioMS = grading.EstimateDurationMS(numWords)
	}

	report, err := s.compute(r, scoring.Input{
		AudioMS:                audioMS,
		Transcription:          transcript.Text,
		ReferenceTranscription: r.FormValue("reference_transcription"),
	})
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	metrics, dims := grading.ApplyStagePolicy(report.Metrics, int(stageID))

	resp := transcriptResponse{
		Text:       transcript.Text,
		Words:      convertWords(transcript.Words),
		AudioMS:    audioMS,
		NumWords:   numWords,
		Metrics:    metrics,
		Dimensions: dims,
		Metadata:   report.Metadata,
	}

	if s.store != nil {
		exerciseID, exErr := formInt(r, "exercise_id")
		sessionID, seErr := formInt(r, "session_id")
		if exErr == nil && seErr == nil {
			if err := s.persist(r, stageID, exerciseID, sessionID, transcript.Text, audioMS, metrics); err != nil {
				observe.Logger(ctx).Error("persisting result failed", "session_id", sessionID, "err", err)
				writeError(w, http.StatusInternalServerError, "failed to persist result")
				return
			}
			resp.Persisted = true
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) persist(r *http.Request, stageID, exerciseID, sessionID int64, text string, audioMS int64, metrics map[string]scoring.MetricResult) error {
	ctx := r.Context()
	if err := s.store.EnsureExercise(ctx, int(stageID), exerciseID); err != nil {
		return err
	}
	return s.store.SaveResult(ctx, &grading.Result{
		StageID:       int(stageID),
		ExerciseID:    exerciseID,
		SessionID:     sessionID,
		Transcription: text,
		AudioSeconds:  float64(audioMS) / 1000,
		Metrics:       metrics,
	})
}

// convertWords drops everything but per-word timing detail for the response.
func convertWords(words []stt.Word) []wordInfo {
	out := make([]wordInfo, 0, len(words))
	for _, w := range words {
		typ := w.Type
		if typ == "" {
			typ = stt.WordTypeWord
		}
		out = append(out, wordInfo{Word: w.Text, Start: w.Start, End: w.End, Type: typ})
	}
	return out
}

// ---------------------------------------------------------------------------
// GET /sessions/{id}/scores
// ---------------------------------------------------------------------------

func (s *Server) handleSessionScores(w http.ResponseWriter, r *http.Request) {
	if s.scorer == nil {
		writeError(w, http.StatusServiceUnavailable, "session persistence not configured")
		return
	}

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id must be an integer")
		return
	}

	scores, err := s.scorer.FinalScores(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, scoring.ErrResourceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		slog.Error("final scores failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute final scores")
		return
	}

	writeJSON(w, http.StatusOK, scores)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// formInt parses a required integer form field.
func formInt(r *http.Request, field string) (int64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, fmt.Errorf("missing form field %q", field)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("form field %q must be an integer", field)
	}
	return v, nil
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "err", err)
	}
}

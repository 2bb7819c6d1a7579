package grading

import (
	"context"

	"github.com/altavoz-ai/altavoz/internal/scoring"
)

// Result is one graded exercise attempt ready for persistence.
type Result struct {
	StageID       int
	ExerciseID    int64
	SessionID     int64
	Transcription string

	// AudioSeconds is the audio length in seconds. Zero when unknown.
	AudioSeconds float64

	// Metrics are the stage-filtered metric results for this attempt.
	Metrics map[string]scoring.MetricResult
}

// MetricRow is one stored metric observation for a session.
type MetricRow struct {
	StageID   int
	Name      string
	Raw       float64
	Score     float64
	SessionID int64
}

// Store persists graded results and retrieves session metric history.
// Implementations must be safe for concurrent use.
type Store interface {
	// EnsureExercise makes sure an exercise row with the given external ID
	// exists, creating a placeholder if it does not. Creating an exercise
	// that already exists is not an error.
	EnsureExercise(ctx context.Context, stageID int, exerciseID int64) error

	// SaveResult writes the transcription and its metric rows atomically.
	SaveResult(ctx context.Context, res *Result) error

	// SessionMetrics returns every stored metric row for the session, in
	// insertion order.
	SessionMetrics(ctx context.Context, sessionID int64) ([]MetricRow, error)
}

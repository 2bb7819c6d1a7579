package grading_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altavoz-ai/altavoz/internal/grading"
	"github.com/altavoz-ai/altavoz/internal/scoring"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if ALTAVOZ_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("ALTAVOZ_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ALTAVOZ_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newIntegrationStore creates a fresh [grading.PostgresStore] over a clean
// schema. It calls t.Cleanup to close the pool when the test finishes.
func newIntegrationStore(t *testing.T) *grading.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN(t))
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	dropSchema(t, ctx, pool)

	store := grading.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return store
}

// dropSchema removes all tables created by Migrate in reverse dependency order.
func dropSchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS metrics CASCADE",
		"DROP TABLE IF EXISTS transcriptions CASCADE",
		"DROP TABLE IF EXISTS exercises CASCADE",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("dropSchema %q: %v", stmt, err)
		}
	}
}

func TestIntegration_SaveAndQuerySession(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	if err := store.EnsureExercise(ctx, 1, 17); err != nil {
		t.Fatalf("EnsureExercise: %v", err)
	}
	// Idempotent on repeat.
	if err := store.EnsureExercise(ctx, 1, 17); err != nil {
		t.Fatalf("EnsureExercise (repeat): %v", err)
	}

	err := store.SaveResult(ctx, &grading.Result{
		StageID:       1,
		ExerciseID:    17,
		SessionID:     42,
		Transcription: "hola mundo esto es una prueba",
		AudioSeconds:  60,
		Metrics: map[string]scoring.MetricResult{
			"precision_transcription": {Raw: 83.3333, Score: 92.59},
			"words_per_minute":        {Raw: 120, Score: 100},
		},
	})
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	rows, err := store.SessionMetrics(ctx, 42)
	if err != nil {
		t.Fatalf("SessionMetrics: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d metric rows, want 2", len(rows))
	}
	byName := make(map[string]grading.MetricRow, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	prec, ok := byName["precision_transcription"]
	if !ok {
		t.Fatal("precision_transcription row missing")
	}
	if prec.StageID != 1 || prec.SessionID != 42 {
		t.Errorf("row = %+v, want stage 1 session 42", prec)
	}
	if prec.Raw != 83.3333 || prec.Score != 92.59 {
		t.Errorf("row values = (%v, %v), want (83.3333, 92.59)", prec.Raw, prec.Score)
	}

	if rows, err := store.SessionMetrics(ctx, 999); err != nil || len(rows) != 0 {
		t.Errorf("SessionMetrics(999) = %v rows, err %v; want none", len(rows), err)
	}
}

func TestIntegration_SaveResultRequiresExercise(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	err := store.SaveResult(ctx, &grading.Result{
		StageID:       2,
		ExerciseID:    9999, // never created
		SessionID:     7,
		Transcription: "sin ejercicio",
		AudioSeconds:  10,
		Metrics: map[string]scoring.MetricResult{
			"words_per_minute": {Raw: 100, Score: 100},
		},
	})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown exercise")
	}

	// The transaction must have rolled back the transcription row too.
	rows, err := store.SessionMetrics(ctx, 7)
	if err != nil {
		t.Fatalf("SessionMetrics: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d metric rows after failed save, want 0", len(rows))
	}
}

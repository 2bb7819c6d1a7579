package grading

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the grading tables. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS exercises (
    id               BIGSERIAL PRIMARY KEY,
    stage_id         INTEGER NOT NULL,
    exercise_id      BIGINT NOT NULL UNIQUE,
    exercise_content TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_exercises_stage ON exercises(stage_id);

CREATE TABLE IF NOT EXISTS transcriptions (
    id            BIGSERIAL PRIMARY KEY,
    stage_id      INTEGER NOT NULL,
    transcription TEXT NOT NULL,
    length_s      DOUBLE PRECISION NOT NULL DEFAULT 0,
    exercise_id   BIGINT NOT NULL REFERENCES exercises(exercise_id),
    session_id    BIGINT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_session ON transcriptions(session_id);
CREATE INDEX IF NOT EXISTS idx_transcriptions_exercise ON transcriptions(exercise_id);

CREATE TABLE IF NOT EXISTS metrics (
    id         BIGSERIAL PRIMARY KEY,
    stage_id   INTEGER NOT NULL,
    name       TEXT NOT NULL,
    value      DOUBLE PRECISION NOT NULL,
    score      DOUBLE PRECISION NOT NULL,
    session_id BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_metrics_session ON metrics(session_id);
CREATE INDEX IF NOT EXISTS idx_metrics_name ON metrics(name);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// grading tables and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("grading: migrate: %w", err)
	}
	return nil
}

// EnsureExercise inserts a placeholder exercise row for exerciseID unless
// one already exists. The placeholder content marks the row as auto-created
// so operators can backfill real exercise text later.
func (s *PostgresStore) EnsureExercise(ctx context.Context, stageID int, exerciseID int64) error {
	const query = `
		INSERT INTO exercises (stage_id, exercise_id, exercise_content)
		VALUES ($1, $2, $3)
		ON CONFLICT (exercise_id) DO NOTHING`

	content := fmt.Sprintf("Auto-created exercise %d", exerciseID)
	_, err := s.db.Exec(ctx, query, stageID, exerciseID, content)
	if err != nil {
		return fmt.Errorf("grading: ensure exercise %d: %w", exerciseID, err)
	}
	return nil
}

// SaveResult writes the transcription row and one metric row per metric in a
// single transaction.
func (s *PostgresStore) SaveResult(ctx context.Context, res *Result) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("grading: save result: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertTranscription = `
		INSERT INTO transcriptions (stage_id, transcription, length_s, exercise_id, session_id)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.Exec(ctx, insertTranscription,
		res.StageID, res.Transcription, res.AudioSeconds, res.ExerciseID, res.SessionID,
	); err != nil {
		return fmt.Errorf("grading: save transcription: %w", err)
	}

	const insertMetric = `
		INSERT INTO metrics (stage_id, name, value, score, session_id)
		VALUES ($1, $2, $3, $4, $5)`

	for name, m := range res.Metrics {
		if _, err := tx.Exec(ctx, insertMetric,
			res.StageID, name, m.Raw, m.Score, res.SessionID,
		); err != nil {
			return fmt.Errorf("grading: save metric %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("grading: save result: commit: %w", err)
	}
	return nil
}

// SessionMetrics returns every stored metric row for sessionID in
// insertion order.
func (s *PostgresStore) SessionMetrics(ctx context.Context, sessionID int64) ([]MetricRow, error) {
	const query = `
		SELECT stage_id, name, value, score, session_id
		FROM metrics
		WHERE session_id = $1
		ORDER BY id`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("grading: session metrics: %w", err)
	}
	defer rows.Close()

	var out []MetricRow
	for rows.Next() {
		var r MetricRow
		if err := rows.Scan(&r.StageID, &r.Name, &r.Raw, &r.Score, &r.SessionID); err != nil {
			return nil, fmt.Errorf("grading: session metrics scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grading: session metrics: %w", err)
	}
	return out, nil
}

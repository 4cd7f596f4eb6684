package db

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"pocket-wellness/pkg"
)

// Repository journals session activity to Postgres for diagnostics and
// later review. Writes are best-effort from the orchestrator's point of
// view: a journal failure is logged by the caller and never blocks the chat.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// is responsible for managing the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreateSession records a new session.
func (r *Repository) CreateSession(ctx context.Context, sessionID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		sessionID,
	)
	return err
}

// RecordAssessment stores a check-in snapshot for the session.
func (r *Repository) RecordAssessment(ctx context.Context, sessionID string, record *pkg.AssessmentRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO assessments (session_id, mood_rating, body_sensations, attention_focus)
         VALUES ($1, $2, $3, $4)`,
		sessionID, record.MoodRating, pq.Array(record.BodySensations), record.AttentionFocus,
	)
	return err
}

// SetExercise updates the session's chosen exercise and persona name.
func (r *Repository) SetExercise(ctx context.Context, sessionID string, exercise pkg.Exercise, persona string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET exercise = $1, persona = $2 WHERE id = $3`,
		string(exercise), persona, sessionID,
	)
	return err
}

// RecordTurn appends one transcript turn to the journal.
func (r *Repository) RecordTurn(ctx context.Context, sessionID string, role pkg.Role, content string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO turns (session_id, role, content) VALUES ($1, $2, $3)`,
		sessionID, string(role), content,
	)
	return err
}

// GetTranscript returns the journaled turns for a session in order. The
// journal spans persona swaps and clears, unlike the live transcript.
func (r *Repository) GetTranscript(ctx context.Context, sessionID string) ([]pkg.Turn, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT role, content FROM turns WHERE session_id = $1 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transcript []pkg.Turn
	for rows.Next() {
		var t pkg.Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, err
		}
		transcript = append(transcript, t)
	}
	return transcript, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ideaverse/internal/errors"
	"ideaverse/models"
	"ideaverse/ports"
)

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// EnsureSchema creates the session tables if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_sessions (
			id UUID PRIMARY KEY,
			problem TEXT NOT NULL,
			current_step INT NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'in_progress',
			interview_questions JSONB,
			interview_answers JSONB,
			understanding_report JSONB,
			recommended_models JSONB,
			model_reasons JSONB,
			thinking_model TEXT NOT NULL DEFAULT '',
			thinking_model_id TEXT NOT NULL DEFAULT '',
			analysis_cards JSONB,
			deep_analysis_report TEXT NOT NULL DEFAULT '',
			solutions JSONB,
			recommendation JSONB,
			mind_map TEXT NOT NULL DEFAULT '',
			mind_map_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS current_session (
			singleton BOOL PRIMARY KEY DEFAULT TRUE CHECK (singleton),
			session_id UUID REFERENCES workflow_sessions(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_workflow_sessions_created_at
			ON workflow_sessions (created_at DESC);
	`)
	if err != nil {
		return errors.Wrap(err, "create session schema")
	}
	return nil
}

const sessionColumns = `
	id, problem, current_step, status,
	interview_questions, interview_answers, understanding_report,
	recommended_models, model_reasons, thinking_model, thinking_model_id,
	analysis_cards, deep_analysis_report,
	solutions, recommendation, mind_map, mind_map_hash,
	created_at, updated_at
`

// Create persists a fresh session and marks it current
func (r *SessionRepositoryImpl) Create(ctx context.Context, problem string) (*models.WorkflowSession, error) {
	session := models.NewWorkflowSession(problem)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin create session")
	}
	defer tx.Rollback()

	// JSONB columns implement driver.Valuer, so they convert automatically
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO workflow_sessions (`+sessionColumns+`)
		VALUES (
			:id, :problem, :current_step, :status,
			:interview_questions, :interview_answers, :understanding_report,
			:recommended_models, :model_reasons, :thinking_model, :thinking_model_id,
			:analysis_cards, :deep_analysis_report,
			:solutions, :recommendation, :mind_map, :mind_map_hash,
			:created_at, :updated_at
		)
	`, session)
	if err != nil {
		return nil, errors.Wrap(err, "insert session")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO current_session (singleton, session_id)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET session_id = EXCLUDED.session_id
	`, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "set current session")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit create session")
	}
	return session, nil
}

// Get retrieves a session by id
func (r *SessionRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.WorkflowSession, error) {
	var session models.WorkflowSession
	err := r.db.GetContext(ctx, &session, `
		SELECT `+sessionColumns+`
		FROM workflow_sessions
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("session " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	return &session, nil
}

// Save writes the full record through, refreshing updated_at
func (r *SessionRepositoryImpl) Save(ctx context.Context, session *models.WorkflowSession) error {
	if session == nil {
		return errors.InvalidInput("nil session")
	}
	session.UpdatedAt = time.Now().UTC()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE workflow_sessions SET
			problem = :problem,
			current_step = :current_step,
			status = :status,
			interview_questions = :interview_questions,
			interview_answers = :interview_answers,
			understanding_report = :understanding_report,
			recommended_models = :recommended_models,
			model_reasons = :model_reasons,
			thinking_model = :thinking_model,
			thinking_model_id = :thinking_model_id,
			analysis_cards = :analysis_cards,
			deep_analysis_report = :deep_analysis_report,
			solutions = :solutions,
			recommendation = :recommendation,
			mind_map = :mind_map,
			mind_map_hash = :mind_map_hash,
			updated_at = :updated_at
		WHERE id = :id
	`, session)
	if err != nil {
		return errors.Wrap(err, "save session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("session " + session.ID.String())
	}
	return nil
}

// Delete removes a session; the current pointer clears via ON DELETE SET NULL
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM workflow_sessions WHERE id = $1
	`, id)
	if err != nil {
		return errors.Wrap(err, "delete session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("session " + id.String())
	}
	return nil
}

// List returns all sessions, newest-first
func (r *SessionRepositoryImpl) List(ctx context.Context) ([]*models.WorkflowSession, error) {
	var sessions []*models.WorkflowSession
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT `+sessionColumns+`
		FROM workflow_sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	return sessions, nil
}

// CurrentID reports the current-session pointer, ok=false when unset
func (r *SessionRepositoryImpl) CurrentID(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.NullUUID
	err := r.db.GetContext(ctx, &id, `
		SELECT session_id FROM current_session WHERE singleton
	`)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, errors.Wrap(err, "get current session")
	}
	if !id.Valid {
		return uuid.Nil, false, nil
	}
	return id.UUID, true, nil
}

// SetCurrentID updates the pointer; nil clears it
func (r *SessionRepositoryImpl) SetCurrentID(ctx context.Context, id *uuid.UUID) error {
	var value interface{}
	if id != nil {
		value = *id
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO current_session (singleton, session_id)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET session_id = EXCLUDED.session_id
	`, value)
	if err != nil {
		return errors.Wrap(err, "set current session")
	}
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ideaverse/internal/errors"
	"ideaverse/models"
)

// SessionRepository is an in-memory implementation of
// ports.SessionRepository, used in tests and DB-less runs.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.WorkflowSession
	current  *uuid.UUID
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[uuid.UUID]*models.WorkflowSession),
	}
}

func (r *SessionRepository) Create(ctx context.Context, problem string) (*models.WorkflowSession, error) {
	session := models.NewWorkflowSession(problem)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	id := session.ID
	r.current = &id

	return session, nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.WorkflowSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, errors.NotFound("session "+id.String())
	}
	return session.Clone(), nil
}

func (r *SessionRepository) Save(ctx context.Context, session *models.WorkflowSession) error {
	if session == nil {
		return errors.InvalidInput("nil session")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return errors.NotFound("session "+session.ID.String())
	}
	session.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return errors.NotFound("session "+id.String())
	}
	delete(r.sessions, id)
	if r.current != nil && *r.current == id {
		r.current = nil
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context) ([]*models.WorkflowSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.WorkflowSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SessionRepository) CurrentID(ctx context.Context) (uuid.UUID, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return uuid.Nil, false, nil
	}
	return *r.current, true, nil
}

func (r *SessionRepository) SetCurrentID(ctx context.Context, id *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == nil {
		r.current = nil
		return nil
	}
	if _, ok := r.sessions[*id]; !ok {
		return errors.NotFound("session "+id.String())
	}
	v := *id
	r.current = &v
	return nil
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"ideaverse/models"
)

// SessionRepository is the keyed local persistence boundary for workflow
// sessions plus the "current session" pointer.
type SessionRepository interface {
	// Create persists a fresh session for the problem text, assigns its id,
	// and marks it current.
	Create(ctx context.Context, problem string) (*models.WorkflowSession, error)

	// Get returns the session or a NOT_FOUND error
	Get(ctx context.Context, id uuid.UUID) (*models.WorkflowSession, error)

	// Save writes the full record through, refreshing UpdatedAt
	Save(ctx context.Context, session *models.WorkflowSession) error

	// Delete removes the session, clearing the current pointer if it
	// referenced the deleted id.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all sessions, newest-first
	List(ctx context.Context) ([]*models.WorkflowSession, error)

	// CurrentID reports the current-session pointer, ok=false when unset
	CurrentID(ctx context.Context) (uuid.UUID, bool, error)

	// SetCurrentID updates the pointer; nil clears it
	SetCurrentID(ctx context.Context, id *uuid.UUID) error
}

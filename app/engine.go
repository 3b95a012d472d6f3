package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ideaverse/internal/errors"
	"ideaverse/models"
	"ideaverse/ports"
)

// AIStatus is the engine-global streaming status exposed to the UI
type AIStatus string

const (
	AIIdle       AIStatus = "idle"
	AIRequesting AIStatus = "requesting"
	AIReceiving  AIStatus = "receiving"
	AICompleted  AIStatus = "completed"
)

// EngineConfig bounds the engine's completion calls
type EngineConfig struct {
	Model       string
	Temperature float64
	Locale      string
}

// Engine drives the three-stage reasoning workflow over a single current
// session. All public methods are safe for concurrent use; streaming happens
// outside the engine lock, and results are merged back in by id.
type Engine struct {
	repo     ports.SessionRepository
	streamer ports.CompletionStreamer
	prompts  ports.PromptResolver
	config   EngineConfig
	sink     ports.EventSink

	mu              sync.Mutex
	current         *models.WorkflowSession
	aiStatus        AIStatus
	aiStatusMessage string
	aiResponseChars int
	lastError       string
}

// NewEngine wires the workflow engine. sink may be nil.
func NewEngine(repo ports.SessionRepository, streamer ports.CompletionStreamer, prompts ports.PromptResolver, config EngineConfig, sink ports.EventSink) *Engine {
	return &Engine{
		repo:     repo,
		streamer: streamer,
		prompts:  prompts,
		config:   config,
		sink:     sink,
		aiStatus: AIIdle,
	}
}

// StatusSnapshot is a point-in-time view of the engine's streaming state
type StatusSnapshot struct {
	Status        AIStatus `json:"status"`
	StatusMessage string   `json:"statusMessage"`
	ResponseChars int      `json:"responseChars"`
	LastError     string   `json:"lastError,omitempty"`
	SessionID     string   `json:"sessionId,omitempty"`
}

// Status returns the current streaming status
func (e *Engine) Status() StatusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := StatusSnapshot{
		Status:        e.aiStatus,
		StatusMessage: e.aiStatusMessage,
		ResponseChars: e.aiResponseChars,
		LastError:     e.lastError,
	}
	if e.current != nil {
		snap.SessionID = e.current.ID.String()
	}
	return snap
}

// Snapshot returns a deep copy of the current session, or nil
func (e *Engine) Snapshot() *models.WorkflowSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// CreateSession starts a new session for the problem and makes it current
func (e *Engine) CreateSession(ctx context.Context, problem string) (*models.WorkflowSession, error) {
	if problem == "" {
		return nil, errors.InvalidInput("problem text is required")
	}

	session, err := e.repo.Create(ctx, problem)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.current = session
	e.aiStatus = AIIdle
	e.aiStatusMessage = ""
	e.aiResponseChars = 0
	e.lastError = ""
	e.mu.Unlock()

	log.Printf("[Engine] created session %s", session.ID)
	e.publish("session_created", session.ID)
	return session.Clone(), nil
}

// LoadSession makes an existing session current
func (e *Engine) LoadSession(ctx context.Context, id uuid.UUID) (*models.WorkflowSession, error) {
	session, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.repo.SetCurrentID(ctx, &id); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.current = session
	e.aiStatus = AIIdle
	e.aiStatusMessage = ""
	e.aiResponseChars = 0
	e.lastError = ""
	e.mu.Unlock()

	e.publish("session_loaded", session.ID)
	return session.Clone(), nil
}

// LoadCurrentSession restores the persisted current session, if any
func (e *Engine) LoadCurrentSession(ctx context.Context) (*models.WorkflowSession, error) {
	id, ok, err := e.repo.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return e.LoadSession(ctx, id)
}

// ResetSession clears the current session without deleting it
func (e *Engine) ResetSession(ctx context.Context) error {
	if err := e.repo.SetCurrentID(ctx, nil); err != nil {
		return err
	}

	e.mu.Lock()
	e.current = nil
	e.aiStatus = AIIdle
	e.aiStatusMessage = ""
	e.aiResponseChars = 0
	e.lastError = ""
	e.mu.Unlock()

	e.publish("session_reset", uuid.Nil)
	return nil
}

// DeleteSession removes a session; a deleted current session is cleared
func (e *Engine) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := e.repo.Delete(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	if e.current != nil && e.current.ID == id {
		e.current = nil
	}
	e.mu.Unlock()

	e.publish("session_deleted", id)
	return nil
}

// ListSessions returns all persisted sessions, newest-first
func (e *Engine) ListSessions(ctx context.Context) ([]*models.WorkflowSession, error) {
	return e.repo.List(ctx)
}

// SetStep moves the workflow to the given step (1-3). Step changes are
// user-driven; the engine only advances automatically after the
// understanding report completes.
func (e *Engine) SetStep(ctx context.Context, step int) error {
	if step < 1 || step > 3 {
		return errors.InvalidInput("step must be between 1 and 3")
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	e.current.CurrentStep = step
	session := e.current.Clone()
	e.mu.Unlock()

	return e.saveSession(ctx, session)
}

// CompleteSession marks the current session finished
func (e *Engine) CompleteSession(ctx context.Context) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	e.current.Status = models.SessionCompleted
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		return err
	}
	e.publish("session_completed", session.ID)
	return nil
}

// callAI resolves a prompt template and streams the completion, keeping the
// engine's status fields and event feed in step with the call lifecycle.
// Runs with the engine lock NOT held.
func (e *Engine) callAI(ctx context.Context, promptName string, variables map[string]string, userMessage string, maxTokens int) (string, error) {
	systemPrompt, err := e.prompts.Resolve(promptName, variables, e.config.Locale)
	if err != nil {
		return "", errors.Wrapf(err, "resolve prompt %s", promptName)
	}

	e.setAIStatus(AIRequesting, "Contacting AI service", 0, "")

	messages := []ports.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}
	opts := ports.StreamOptions{
		Model:       e.config.Model,
		Temperature: e.config.Temperature,
		MaxTokens:   maxTokens,
	}

	started := false
	response, err := e.streamer.Stream(ctx, messages, opts, func(chars int) {
		if !started {
			started = true
			e.setAIStatus(AIReceiving, "Receiving response", chars, "")
			return
		}
		e.updateChars(chars)
	})
	if err != nil {
		e.failAI(err)
		return "", err
	}

	// Status moves to completed only after the caller parses and merges
	return response, nil
}

// completeAI marks the in-flight call finished. Called by each operation
// after the response is parsed and merged, not merely streamed.
func (e *Engine) completeAI() {
	e.mu.Lock()
	e.aiStatus = AICompleted
	e.aiStatusMessage = "Response complete"
	chars := e.aiResponseChars
	var sessionID uuid.UUID
	if e.current != nil {
		sessionID = e.current.ID
	}
	e.mu.Unlock()

	e.publishStatus(sessionID, string(AICompleted), chars)
}

// failAI records a failed call: status back to idle, one visible error
// message kept until the next attempt clears it.
func (e *Engine) failAI(err error) {
	e.setAIStatus(AIIdle, "", 0, err.Error())
}

// abandonAI resets the status when the target session or record vanished
// while a call was in flight. The operation itself is a no-op, but the
// streaming status must not stay stuck at requesting/receiving.
func (e *Engine) abandonAI() {
	e.setAIStatus(AIIdle, "", 0, "session changed before the response could be applied")
}

func (e *Engine) setAIStatus(status AIStatus, message string, chars int, lastError string) {
	e.mu.Lock()
	e.aiStatus = status
	e.aiStatusMessage = message
	e.aiResponseChars = chars
	e.lastError = lastError
	var sessionID uuid.UUID
	if e.current != nil {
		sessionID = e.current.ID
	}
	e.mu.Unlock()

	e.publishStatus(sessionID, string(status), chars)
}

func (e *Engine) updateChars(chars int) {
	e.mu.Lock()
	e.aiResponseChars = chars
	var sessionID uuid.UUID
	if e.current != nil {
		sessionID = e.current.ID
	}
	status := e.aiStatus
	e.mu.Unlock()

	e.publishStatus(sessionID, string(status), chars)
}

// saveSession writes the session through to the repository. Persistence
// failures are logged but do not undo in-memory state; the next successful
// operation writes the full record again.
func (e *Engine) saveSession(ctx context.Context, session *models.WorkflowSession) error {
	if err := e.repo.Save(ctx, session); err != nil {
		log.Printf("[Engine] failed to persist session %s: %v", session.ID, err)
		return err
	}
	return nil
}

func (e *Engine) publish(eventType string, sessionID uuid.UUID) {
	if e.sink == nil {
		return
	}
	id := ""
	if sessionID != uuid.Nil {
		id = sessionID.String()
	}
	e.sink.Publish(ports.WorkflowEvent{
		SessionID: id,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	})
}

func (e *Engine) publishStatus(sessionID uuid.UUID, status string, chars int) {
	if e.sink == nil {
		return
	}
	id := ""
	if sessionID != uuid.Nil {
		id = sessionID.String()
	}
	e.sink.Publish(ports.WorkflowEvent{
		SessionID: id,
		EventType: "ai_status",
		Status:    status,
		Chars:     chars,
		Timestamp: time.Now().UTC(),
	})
}

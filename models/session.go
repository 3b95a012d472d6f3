package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks whether a workflow session is still being worked on
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// CardStatus is the async lifecycle state of one analysis card
type CardStatus string

const (
	CardPending   CardStatus = "pending"
	CardAnalyzing CardStatus = "analyzing"
	CardCompleted CardStatus = "completed"
)

// InterviewQuestion is one clarifying question generated in stage 1
type InterviewQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// InterviewAnswer is the user's answer to an interview question.
// At most one answer per question id; saves are upserts.
type InterviewAnswer struct {
	QuestionID int    `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// AnalysisCard is one analytical dimension under the selected reasoning model.
// Content fields are populated once the card reaches CardCompleted.
type AnalysisCard struct {
	ID            int        `json:"id"`
	Dimension     string     `json:"dimension"`
	Icon          string     `json:"icon,omitempty"`
	Status        CardStatus `json:"status"`
	Phenomenon    string     `json:"phenomenon,omitempty"`
	Cause         string     `json:"cause,omitempty"`
	Impact        string     `json:"impact,omitempty"`
	HiddenFactors string     `json:"hiddenFactors,omitempty"`
}

// HasContent reports whether the card carries any analysis text
func (c AnalysisCard) HasContent() bool {
	return c.Phenomenon != "" || c.Cause != "" || c.Impact != "" || c.HiddenFactors != ""
}

// Solution is one generated candidate course of action
type Solution struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Implementation string  `json:"implementation"`
	Effectiveness  float64 `json:"effectiveness"`
	Feasibility    float64 `json:"feasibility"`
	Sustainability float64 `json:"sustainability"`
	WeightedScore  float64 `json:"weightedScore"`
	CostBenefit    string  `json:"costBenefit"`
	WorstCase      string  `json:"worstCase"`
	Countermeasure string  `json:"countermeasure"`
	Timeframe      string  `json:"timeframe"`
	Resources      string  `json:"resources"`
}

// Recommendation points at the best solution in the generated set
type Recommendation struct {
	BestSolution int    `json:"bestSolution"`
	Reason       string `json:"reason"`
}

// Value implements driver.Valuer interface
func (r *Recommendation) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface
func (r *Recommendation) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// WorkflowSession is the persisted state of one reasoning session
type WorkflowSession struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Problem     string        `json:"problem" db:"problem"`
	CurrentStep int           `json:"currentStep" db:"current_step"`
	Status      SessionStatus `json:"status" db:"status"`

	// Stage 1
	InterviewQuestions  QuestionList `json:"interviewQuestions" db:"interview_questions"`
	InterviewAnswers    AnswerList   `json:"interviewAnswers" db:"interview_answers"`
	UnderstandingReport JSONBMap     `json:"understandingReport" db:"understanding_report"`

	// Stage 2
	RecommendedModels  StringList `json:"recommendedModels" db:"recommended_models"`
	ModelReasons       StringMap  `json:"modelReasons" db:"model_reasons"`
	ThinkingModel      string     `json:"thinkingModel" db:"thinking_model"`
	ThinkingModelID    string     `json:"thinkingModelId" db:"thinking_model_id"`
	AnalysisCards      CardList   `json:"analysisCards" db:"analysis_cards"`
	DeepAnalysisReport string     `json:"deepAnalysisReport" db:"deep_analysis_report"`

	// Stage 3
	Solutions      SolutionList    `json:"solutions" db:"solutions"`
	Recommendation *Recommendation `json:"recommendation" db:"recommendation"`
	MindMap        string          `json:"mindMap" db:"mind_map"`
	MindMapHash    string          `json:"mindMapHash" db:"mind_map_hash"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewWorkflowSession creates a fresh session at step 1 with empty stage data
func NewWorkflowSession(problem string) *WorkflowSession {
	now := time.Now().UTC()
	return &WorkflowSession{
		ID:               uuid.New(),
		Problem:          problem,
		CurrentStep:      1,
		Status:           SessionInProgress,
		InterviewAnswers: AnswerList{},
		AnalysisCards:    CardList{},
		Solutions:        SolutionList{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CardByID returns a pointer into the session's card list, or nil
func (s *WorkflowSession) CardByID(id int) *AnalysisCard {
	for i := range s.AnalysisCards {
		if s.AnalysisCards[i].ID == id {
			return &s.AnalysisCards[i]
		}
	}
	return nil
}

// SolutionByID returns a pointer into the session's solution list, or nil
func (s *WorkflowSession) SolutionByID(id int) *Solution {
	for i := range s.Solutions {
		if s.Solutions[i].ID == id {
			return &s.Solutions[i]
		}
	}
	return nil
}

// Clone returns a deep copy via JSON round-trip. Used to hand snapshots to
// the UI layer without exposing the engine's mutable session value.
func (s *WorkflowSession) Clone() *WorkflowSession {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out WorkflowSession
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	out.CreatedAt = s.CreatedAt
	out.UpdatedAt = s.UpdatedAt
	return &out
}

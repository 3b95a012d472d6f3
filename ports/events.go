package ports

import "time"

// WorkflowEvent is pushed to UI listeners as engine state changes. It is a
// cosmetic feed ("AI is thinking, N characters received"); it carries no
// correctness weight.
type WorkflowEvent struct {
	SessionID string                 `json:"sessionId"`
	EventType string                 `json:"eventType"`
	Status    string                 `json:"status"`
	Chars     int                    `json:"chars"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventSink receives workflow events. Publish must not block the engine.
type EventSink interface {
	Publish(event WorkflowEvent)
}

package llm

import (
	"context"
	"sync"

	"ideaverse/ports"
)

// MockStreamer is a scripted CompletionStreamer for tests and DB-less demo
// runs. Responses are consumed in FIFO order; a queued error is returned
// instead of text for that call.
type MockStreamer struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     []MockCall
}

type mockResponse struct {
	text string
	err  error
}

// MockCall records a single Stream invocation for assertions
type MockCall struct {
	Messages []ports.Message
	Opts     ports.StreamOptions
}

func NewMockStreamer() *MockStreamer {
	return &MockStreamer{}
}

// QueueResponse appends a successful scripted response
func (m *MockStreamer) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{text: text})
}

// QueueError appends a failing call to the script
func (m *MockStreamer) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
}

// Calls returns the recorded invocations so far
func (m *MockStreamer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Stream pops the next scripted response, simulating chunked progress in
// 64-char steps before returning the full text.
func (m *MockStreamer) Stream(ctx context.Context, messages []ports.Message, opts ports.StreamOptions, onProgress ports.ProgressFunc) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Messages: messages, Opts: opts})
	var resp mockResponse
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if resp.err != nil {
		return "", resp.err
	}

	if onProgress != nil {
		for sent := 0; sent < len(resp.text); {
			sent += 64
			if sent > len(resp.text) {
				sent = len(resp.text)
			}
			onProgress(sent)
		}
		if len(resp.text) == 0 {
			onProgress(0)
		}
	}
	return resp.text, nil
}

package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ideaverse/internal/errors"
	"ideaverse/ports"
)

func sseServer(t *testing.T, lines []string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(status)
		for _, line := range lines {
			w.Write([]byte(line + "\n\n"))
		}
	}))
}

func TestStreamAccumulatesDeltas(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices": [{"delta": {"content": "Hello"}}]}`,
		`data: {"choices": [{"delta": {"content": ", "}}]}`,
		`data: not-json-keepalive`,
		`data: {"choices": [{"delta": {"content": "world"}}]}`,
		`data: [DONE]`,
	}, http.StatusOK)
	defer server.Close()

	client, err := NewStreamClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewStreamClient: %v", err)
	}

	var progress []int
	got, err := client.Stream(context.Background(),
		[]ports.Message{{Role: "user", Content: "hi"}},
		ports.StreamOptions{Model: "test-model", MaxTokens: 100},
		func(chars int) { progress = append(progress, chars) })
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if got != "Hello, world" {
		t.Errorf("got %q", got)
	}

	if len(progress) != 3 {
		t.Fatalf("expected 3 progress callbacks, got %d", len(progress))
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
		}
	}
	if progress[len(progress)-1] != len("Hello, world") {
		t.Errorf("final progress %d, want %d", progress[len(progress)-1], len("Hello, world"))
	}
}

func TestStreamHTTPErrorIsTransport(t *testing.T) {
	server := sseServer(t, []string{`{"error": "rate limited"}`}, http.StatusTooManyRequests)
	defer server.Close()

	client, _ := NewStreamClient(Config{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Stream(context.Background(), nil, ports.StreamOptions{Model: "m"}, nil)
	if !errors.IsTransport(err) {
		t.Errorf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestNewStreamClientRequiresKey(t *testing.T) {
	_, err := NewStreamClient(Config{})
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestMockStreamerScript(t *testing.T) {
	mock := NewMockStreamer()
	mock.QueueResponse("first")
	mock.QueueError(errors.Transport(nil))

	got, err := mock.Stream(context.Background(), nil, ports.StreamOptions{}, nil)
	if err != nil || got != "first" {
		t.Errorf("first call: %q, %v", got, err)
	}
	_, err = mock.Stream(context.Background(), nil, ports.StreamOptions{}, nil)
	if !errors.IsTransport(err) {
		t.Errorf("second call should fail with TRANSPORT_ERROR, got %v", err)
	}
	if len(mock.Calls()) != 2 {
		t.Errorf("expected 2 recorded calls, got %d", len(mock.Calls()))
	}
}

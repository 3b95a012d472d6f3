package ports

import "context"

// Message is one role-tagged turn sent to the completion endpoint
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamOptions bounds a single completion call
type StreamOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ProgressFunc receives the cumulative character count of text streamed so
// far. Counts are monotonically non-decreasing; the callback is invoked at
// least once per underlying chunk.
type ProgressFunc func(chars int)

// CompletionStreamer wraps a chat-completion endpoint as a black-box
// streaming text producer. Stream blocks until the stream finishes and
// returns the full accumulated text; any service or configuration failure
// surfaces as a single opaque error.
type CompletionStreamer interface {
	Stream(ctx context.Context, messages []Message, opts StreamOptions, onProgress ProgressFunc) (string, error)
}

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ideaverse/internal/errors"
	"ideaverse/ports"
)

// StreamClient implements ports.CompletionStreamer against a
// DeepSeek/OpenAI-compatible chat-completions endpoint with stream mode on.
type StreamClient struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// HTTPClient may be replaced in tests; nil uses a timeout-bound default
	HTTPClient *http.Client
}

// Config holds the settings needed to reach the completion endpoint
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewStreamClient creates a streaming completion client
func NewStreamClient(config Config) (*StreamClient, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing completion API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.deepseek.com/v1"
	}

	return &StreamClient{
		APIKey:  config.APIKey,
		BaseURL: baseURL,
		Timeout: config.Timeout,
	}, nil
}

// Stream issues the completion call and accumulates streamed deltas,
// invoking onProgress with the cumulative character count per delta.
func (c *StreamClient) Stream(ctx context.Context, messages []ports.Message, opts ports.StreamOptions, onProgress ports.ProgressFunc) (string, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return "", errors.Transport(fmt.Errorf("missing model"))
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	type reqBody struct {
		Model       string          `json:"model"`
		Messages    []ports.Message `json:"messages"`
		Temperature float64         `json:"temperature,omitempty"`
		MaxTokens   int             `json:"max_tokens,omitempty"`
		Stream      bool            `json:"stream"`
	}
	body := reqBody{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", errors.Transport(fmt.Errorf("marshal request: %w", err))
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", errors.Transport(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", errors.Transport(fmt.Errorf("completion request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respRaw, _ := io.ReadAll(resp.Body)
		return "", errors.Transport(fmt.Errorf("completion http %d: %s", resp.StatusCode, string(respRaw)))
	}

	full, err := c.readStream(resp.Body, onProgress)
	if err != nil {
		return "", errors.Transport(err)
	}
	return full, nil
}

// readStream decodes "data: {...}" SSE lines into accumulated content.
// Lines that fail to decode are skipped; the stream ends at EOF or the
// [DONE] sentinel.
func (c *StreamClient) readStream(body io.Reader, onProgress ports.ProgressFunc) (string, error) {
	type delta struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}

	var full strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "data: [DONE]" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var d delta
		if err := json.Unmarshal([]byte(line[len("data: "):]), &d); err != nil {
			log.Printf("[StreamClient] skipping undecodable SSE line: %v", err)
			continue
		}
		if len(d.Choices) == 0 || d.Choices[0].Delta.Content == "" {
			continue
		}

		full.WriteString(d.Choices[0].Delta.Content)
		if onProgress != nil {
			onProgress(full.Len())
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return full.String(), nil
}

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scrubworks/piimap/internal/logger"
)

// Compile-time check.
var _ Classifier = (*Client)(nil)

// ClientConfig configures the HTTP classifier.
type ClientConfig struct {
	// BaseURL is an OpenAI-compatible chat completions endpoint root,
	// e.g. "https://api.openai.com/v1" or "http://localhost:11434/v1".
	BaseURL string

	// Model is the deployment/model name sent with every request.
	Model string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// Timeout bounds a single classify call end to end.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls across all workers.
	// Zero means unlimited.
	RequestsPerSecond float64

	// LogLevel gates the client's diagnostic output.
	LogLevel string
}

// Client classifies fragments through an OpenAI-compatible chat endpoint.
// It is safe for concurrent use; the fan-out dispatcher shares one Client
// across all workers.
type Client struct {
	url     string
	model   string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		url:     strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		limiter: limiter,
		http:    &http.Client{Timeout: timeout},
		log:     logger.New("oracle", cfg.LogLevel),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Classify sends one fragment to the model and parses the reply. Transport
// failures come back as *CallError, malformed replies as *ParseError; the
// caller maps both to an empty partial result.
func (c *Client) Classify(ctx context.Context, text string) ([]Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &CallError{Err: err}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildUserPrompt(text)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, &CallError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &CallError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &CallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &CallError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, snippet)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Err: fmt.Errorf("read body: %w", err)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ParseError{Raw: string(raw), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ParseError{Raw: string(raw), Err: fmt.Errorf("no choices in response")}
	}

	choice := parsed.Choices[0]
	if choice.FinishReason == "length" {
		c.log.Warn("classify", "response truncated by token limit")
	}

	records, err := ParseResponse(choice.Message.Content)
	if err != nil {
		return nil, err
	}

	c.log.Debugf("classify", "fragment_len=%d records=%d", len(text), len(records))
	return records, nil
}

// Package ai talks to the OpenRouter chat completions API on behalf of the
// editor: code suggestions, explanations and fixes for the active file.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

const (
	// DefaultOpenRouterURL is the chat completions endpoint
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultModel is used when no model is configured
	DefaultModel = "qwen/qwen3-coder:free"

	// DefaultReferer identifies the calling application to OpenRouter
	DefaultReferer = "http://localhost"

	// Title is sent as X-Title
	Title = "CodeBuilder Pro"

	// NoResponse is returned when the API answers without a choice
	NoResponse = "No response from AI"

	defaultTimeout = 60 * time.Second

	// maxResponseSize limits how much of a response body is read
	maxResponseSize = 10 << 20
)

// ErrNotConfigured indicates the API key is not set
var ErrNotConfigured = errors.New("OpenRouter API key not configured")

// Message is one chat message
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client calls OpenRouter. The zero value is not usable; use New.
type Client struct {
	apiKey  string
	model   string
	url     string
	referer string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithModel overrides DefaultModel
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithURL overrides DefaultOpenRouterURL
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

// WithReferer sets the HTTP-Referer header
func WithReferer(referer string) Option {
	return func(c *Client) {
		c.referer = referer
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit bounds outgoing requests to r per second with the given burst
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// New creates a client authenticating with apiKey
func New(apiKey string, options ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		url:     DefaultOpenRouterURL,
		referer: DefaultReferer,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// IsConfigured reports whether an API key is set
func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model requests are sent to
func (c *Client) Model() string {
	return c.model
}

// Chat sends messages and returns the content of the first choice, or
// NoResponse when there is none. A non-2xx response is an
// ExternalCallFailed error carrying the status text.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", Title)
	req.Header.Set("Content-Type", "application/json")

	slog.DebugContext(ctx, "calling openrouter", "model", c.model, "messages", len(messages))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", models.WrapError(models.KindExternalCallFailed, "OpenRouter request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", models.NewError(models.KindExternalCallFailed, "", "OpenRouter API error: "+statusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", models.WrapError(models.KindExternalCallFailed, "failed to read OpenRouter response", err)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", models.WrapError(models.KindExternalCallFailed, "failed to decode OpenRouter response", err)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return NoResponse, nil
	}
	return out.Choices[0].Message.Content, nil
}

// statusText returns the reason phrase for code
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}

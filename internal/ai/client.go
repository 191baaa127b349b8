// Package ai talks to the Groq chat-completions API. The reply persona and
// the rolling chat memory are folded into each request.
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
	"strings"
	"time"

	"github.com/kariosv/collinsbot/core/config"
	"github.com/kariosv/collinsbot/core/logger"
)

const (
	defaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	temperature     = 0.5

	systemPrompt = "You are Collins AI, a smart and friendly Telegram assistant. " +
		"Your creator is Ifeanyichukwu Collins Chibueze, aka Karios Vantari. " +
		"Keep answers short, helpful, and chill. " +
		"Mention your creator subtly when relevant, never overdo it."
)

// ErrNetwork is reported when the model could not be reached or answered
// with a failure. Callers show a soft fallback message instead of crashing.
var ErrNetwork = errors.New("ai: model unreachable")

// Client calls the chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	maxTokens  int
}

// NewClient builds a client from config. httpClient may be nil to use a
// default with a sane timeout.
func NewClient(cfg config.AIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   defaultEndpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Ask sends the prompt together with the user's recent chat memory and
// returns the model's reply.
func (c *Client) Ask(ctx context.Context, prompt string, history []string) (string, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Chat memory:\n%s\n\n%s", strings.Join(history, "\n"), prompt)},
		},
		Temperature:         temperature,
		MaxCompletionTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn(ctx, "ai", "ai.request.fail",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("ai: post: %w", errors.Join(ErrNetwork, err))
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", errors.Join(ErrNetwork, err))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", errors.Join(ErrNetwork, err))
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		logger.Warn(ctx, "ai", "ai.request.fail",
			slog.String("status", "fail"),
			slog.Int("http_code", resp.StatusCode),
			slog.String("err", msg),
		)
		return "", fmt.Errorf("ai: %s: %w", msg, ErrNetwork)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ai: empty completion: %w", ErrNetwork)
	}

	logger.Debug(ctx, "ai", "ai.request",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

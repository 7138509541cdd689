// Package provider implements the remote text-correction capability
// against an OpenAI-compatible chat-completions API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrProvider wraps any failure of the remote correction call.
// Callers surface it as a generic provider error; the cause is attached
// for logs.
var ErrProvider = errors.New("correction provider error")

const (
	correctPrompt = "Correct the following text and only provide the corrected text. " +
		"Look for grammar, spelling and punctuation, and change nothing else:\n"
	paraphrasePrompt = "Paraphrase the following text to improve clarity and flow. " +
		"Only provide the improved text:\n"
)

// Client calls a hosted chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// New creates a provider client. baseURL is the API root (without the
// /chat/completions suffix).
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Correct returns a grammar/spelling-corrected version of text.
func (c *Client) Correct(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, correctPrompt+text)
}

// Paraphrase returns an improved rewording of text.
func (c *Client) Paraphrase(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, paraphrasePrompt+text)
}

// complete performs a single chat completion round-trip.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrProvider)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

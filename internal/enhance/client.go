// Package enhance proxies note text to an upstream chat-completions API
// and returns an improved version of the text. Upstream failures are
// reported as ErrUpstream so handlers can map them to 502.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/notewall/notewall/internal/config"
	"github.com/notewall/notewall/pkg/logger"
)

// ErrUpstream marks failures of the external enhancement service.
var ErrUpstream = errors.New("enhancement service unavailable")

// ErrValidation marks bad caller input (empty text).
var ErrValidation = errors.New("text must not be empty")

const systemPrompt = "You improve short sticky notes. Fix grammar and clarity, " +
	"keep the author's meaning and language, and reply with the improved text only."

// Client calls the configured chat-completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(cfg config.EnhanceConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Enhance returns an improved version of text, or ErrUpstream when the
// external API cannot be reached or answers with garbage.
func (c *Client) Enhance(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrValidation
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warnf("enhance request failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warnf("enhance upstream returned %d", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}

	enhanced := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if enhanced == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return enhanced, nil
}

// Package gemini calls Google's Generative Language API as the fallback model provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const requestTimeout = 15 * time.Second

// ErrClientNotInitialised is returned when no API key was configured.
var ErrClientNotInitialised = errors.New("gemini client not initialised")

// Client wraps the generated Generative Language service.
type Client struct {
	service   *generativelanguage.Service
	model     string
	maxTokens int64
}

// New builds a client for model. An empty apiKey yields a client whose calls fail with ErrClientNotInitialised.
func New(ctx context.Context, apiKey, model string, maxTokens int, opts ...option.ClientOption) (*Client, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}
	c := &Client{model: "models/" + strings.TrimPrefix(model, "models/"), maxTokens: int64(maxTokens)}
	if apiKey == "" {
		return c, nil
	}

	service, err := generativelanguage.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini service: %w", err)
	}
	c.service = service
	return c, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string {
	return "gemini"
}

// Complete sends the system instruction and user text and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if c.service == nil {
		return "", ErrClientNotInitialised
	}

	req := &generativelanguage.GenerateContentRequest{
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: system}},
		},
		Contents: []*generativelanguage.Content{
			{Role: "user", Parts: []*generativelanguage.Part{{Text: user}}},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			MaxOutputTokens:  c.maxTokens,
			ResponseMimeType: "application/json",
		},
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.service.Models.GenerateContent(c.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
		break
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", fmt.Errorf("empty completion received")
	}
	return content, nil
}

package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const requestTimeout = 15 * time.Second

// Client wraps the OpenAI SDK for single-shot chat completions.
type Client struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int64
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// New returns a client bound to model. Without an apiKey every call fails with ErrClientNotInitialised.
func New(apiKey, model string, maxTokens int, opts ...option.RequestOption) *Client {
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}
	c := &Client{model: openai.ChatModel(model), maxTokens: int64(maxTokens)}
	if apiKey == "" {
		return c
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	c.client = &client
	return c
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string {
	return "openai"
}

// Complete sends the system instruction and user text and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if c.client == nil {
		return "", ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(system),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(user),
					},
				},
			},
		},
		Temperature:         openai.Float(0.0),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion received")
	}
	return content, nil
}

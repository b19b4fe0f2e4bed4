package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiClient speaks the OpenAI-compatible chat-completions protocol.
// Both providers use it; only deepseek sets maxTokens.
type openaiClient struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

func newOpenAIClient(cfg Config, httpClient *http.Client, maxTokens int) *openaiClient {
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	return &openaiClient{
		api:         api,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(maxTokens),
	}
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.StatusCode, Body: statusBody(apiErr)}
		}
		return "", fmt.Errorf("completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyAnswer
	}
	return content, nil
}

func statusBody(apiErr *openai.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return http.StatusText(apiErr.StatusCode)
}

package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiClient struct {
	client openai.Client
	model  string
}

// newOpenAIClient talks to any OpenAI-compatible chat completions endpoint (Ollama included).
func newOpenAIClient(cfg Config) *openaiClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-3-flash-preview:cloud"
	}

	return &openaiClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			c.userMessage(req),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		gwErr := classify(err)
		slog.WarnContext(ctx, "llm completion failed",
			"model", c.model,
			"reason", gwErr.Reason,
			"status_code", gwErr.StatusCode,
			"duration_ms", time.Since(start).Milliseconds())
		return "", gwErr
	}

	if len(resp.Choices) == 0 {
		return "", &GatewayError{Reason: ReasonEmptyReply, Err: errors.New("no choices in response")}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &GatewayError{Reason: ReasonEmptyReply, Err: errors.New("empty message content")}
	}

	slog.DebugContext(ctx, "llm completion done",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return content, nil
}

func (c *openaiClient) Model() string {
	return c.model
}

func (c *openaiClient) userMessage(req Request) openai.ChatCompletionMessageParamUnion {
	name := SanitizeName(req.UserName)
	if name == "" {
		return openai.UserMessage(req.UserPrompt)
	}
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Name: openai.String(name),
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(req.UserPrompt),
			},
		},
	}
}

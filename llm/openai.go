package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI sends dispatched batches to an OpenAI or OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	model  string
	params Parameters

	client *goopenai.Client
	logger *slog.Logger
}

const defaultOpenAITimeout = 2 * time.Minute

// NewOpenAI creates a new OpenAI instance. baseURL may be empty for the official API, or any
// address accepted by NormalizeBaseURL.
func NewOpenAI(baseURL, apiKey, model string, params Parameters, logger *slog.Logger) OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if u := NormalizeBaseURL(baseURL); u != "" {
		cfg.BaseURL = u
	}

	return OpenAI{
		model:  model,
		params: params,
		client: goopenai.NewClientWithConfig(cfg),
		logger: orDiscard(logger).With(slog.String("module", "openai"), slog.String("baseURL", cfg.BaseURL)),
	}
}

// Chat sends a chat message to the OpenAI API.
func (o OpenAI) Chat(messages []string) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(messages)+1)
	if o.params.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: o.params.SystemPrompt,
		})
	}
	for i, msg := range messages {
		role := goopenai.ChatMessageRoleUser
		if i%2 == 1 {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg,
		})
	}

	timeout := defaultOpenAITimeout
	if o.params.TimeoutSeconds > 0 {
		timeout = time.Duration(o.params.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	o.logger.Debug("Sending chat completion", "messages", len(msgs))

	resp, err := o.client.CreateChatCompletion(ctx, o.chatRequest(msgs))
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	content := resp.Choices[0].Message.Content
	if !o.params.keepReasoning() {
		content = RemoveThinkTags(content)
	}
	return content, nil
}

func (o OpenAI) chatRequest(messages []goopenai.ChatCompletionMessage) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}

	if o.params.Temperature != nil {
		req.Temperature = *o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = *o.params.TopP
	}
	if o.params.Stop != nil {
		req.Stop = o.params.Stop
	}
	if o.params.PresencePenalty != nil {
		req.PresencePenalty = *o.params.PresencePenalty
	}
	if o.params.FrequencyPenalty != nil {
		req.FrequencyPenalty = *o.params.FrequencyPenalty
	}
	if o.params.Seed != nil {
		req.Seed = o.params.Seed
	}
	if o.params.MaxTokens != nil {
		req.MaxTokens = *o.params.MaxTokens
	}

	return req
}

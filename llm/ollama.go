package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama sends dispatched batches to an Ollama server and collects the streamed reply.
type Ollama struct {
	model  string
	params Parameters

	client *api.Client
	logger *slog.Logger
}

const defaultOllamaTimeout = 5 * time.Minute

// NewOllama creates a new Ollama instance with the specified host URL and model name.
// It returns an error if host is not a valid URL.
func NewOllama(host, model string, params Parameters, logger *slog.Logger) (Ollama, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(host), "/"))
	if err != nil {
		return Ollama{}, fmt.Errorf("failed to parse ollama host: %w", err)
	}

	return Ollama{
		model:  model,
		params: params,
		client: api.NewClient(u, &http.Client{}),
		logger: orDiscard(logger).With(slog.String("module", "ollama")),
	}, nil
}

// Chat sends a chat message to the Ollama API.
func (o Ollama) Chat(messages []string) (string, error) {
	msgs := make([]api.Message, 0, len(messages)+1)
	if o.params.SystemPrompt != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: o.params.SystemPrompt})
	}
	for i, msg := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs = append(msgs, api.Message{
			Role:    role,
			Content: msg,
		})
	}

	req := o.chatRequest(msgs)

	timeout := defaultOllamaTimeout
	if o.params.TimeoutSeconds > 0 {
		timeout = time.Duration(o.params.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	o.logger.Debug("Sending chat", "messages", len(msgs))

	var result strings.Builder
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		result.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if o.params.keepReasoning() {
		return result.String(), nil
	}
	return RemoveThinkTags(result.String()), nil
}

func (o Ollama) chatRequest(messages []api.Message) api.ChatRequest {
	req := api.ChatRequest{
		Model:    o.model,
		Messages: messages,
	}

	opts := make(map[string]any)

	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.Seed != nil {
		opts["seed"] = *o.params.Seed
	}
	if o.params.Stop != nil {
		opts["stop"] = o.params.Stop
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.MaxTokens != nil {
		opts["num_predict"] = *o.params.MaxTokens
	}
	if o.params.IncludeReasoning != nil {
		req.Think = o.params.IncludeReasoning
	}

	req.Options = opts

	return req
}

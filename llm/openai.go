package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vivian-xia/reviewrag/retry"
)

const openAIAPIURLv1 = "https://api.openai.com/v1"

// OpenAILLM talks to the OpenAI chat completion API. Transient failures
// are retried with exponential backoff.
type OpenAILLM struct {
	client *openai.Client
	model  string
	retry  retry.Config
	logger *slog.Logger
}

// OpenAILLMOption configures an OpenAILLM.
type OpenAILLMOption func(*OpenAILLM)

// WithRetryConfig sets the retry policy for API calls.
func WithRetryConfig(cfg retry.Config) OpenAILLMOption {
	return func(o *OpenAILLM) {
		o.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenAILLMOption {
	return func(o *OpenAILLM) {
		o.logger = logger
	}
}

// NewOpenAILLM creates a new OpenAILLM. Empty arguments fall back to
// the OPENAI_URL / OPENAI_API_KEY environment variables and gpt-4o.
func NewOpenAILLM(baseURL, model, apiKey string, opts ...OpenAILLMOption) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_URL")
		if baseURL == "" {
			baseURL = openAIAPIURLv1
		}
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return NewOpenAILLMWithClient(openai.NewClientWithConfig(config), model, opts...)
}

// NewOpenAILLMWithClient creates a new OpenAILLM with a pre-configured
// client.
func NewOpenAILLMWithClient(client *openai.Client, model string, opts ...OpenAILLMOption) *OpenAILLM {
	if model == "" {
		model = openai.GPT4o
	}

	o := &OpenAILLM{
		client: client,
		model:  model,
		retry:  retry.DefaultConfig(),
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	return o.Chat(ctx, []ChatMessage{NewUserMessage(prompt)})
}

func (o *OpenAILLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return o.ChatWithOptions(ctx, messages, nil)
}

func (o *OpenAILLM) ChatWithOptions(ctx context.Context, messages []ChatMessage, opts *ChatOptions) (string, error) {
	o.logger.Info("chat completion called", "model", o.model, "message_count", len(messages))

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: convertToOpenAIMessages(messages),
	}
	applyOptions(&req, opts)

	var resp openai.ChatCompletionResponse
	err := retry.Do(ctx, o.retry, func() error {
		var callErr error
		resp, callErr = o.client.CreateChatCompletion(ctx, req)
		return callErr
	})

	if err != nil {
		o.logger.Error("chat completion failed", "model", o.model, "error", err)
		return "", fmt.Errorf("openai chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// applyOptions copies the non-nil option fields onto the request.
func applyOptions(req *openai.ChatCompletionRequest, opts *ChatOptions) {
	if opts == nil {
		return
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}
	if opts.FrequencyPenalty != nil {
		req.FrequencyPenalty = *opts.FrequencyPenalty
	}
	if opts.PresencePenalty != nil {
		req.PresencePenalty = *opts.PresencePenalty
	}
	if opts.ResponseFormat != nil && opts.ResponseFormat.Type == ResponseFormatJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
}

// convertToOpenAIMessages converts ChatMessage slice to OpenAI format.
func convertToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return openaiMessages
}

var _ LLM = (*OpenAILLM)(nil)

package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vivian-xia/reviewrag/retry"
)

// OpenAIEmbedding generates embeddings via the OpenAI API. Transient
// failures are retried with exponential backoff.
type OpenAIEmbedding struct {
	client *openai.Client
	model  openai.EmbeddingModel
	retry  retry.Config
	logger *slog.Logger
}

// OpenAIEmbeddingOption configures an OpenAIEmbedding.
type OpenAIEmbeddingOption func(*OpenAIEmbedding)

// WithRetryConfig sets the retry policy for API calls.
func WithRetryConfig(cfg retry.Config) OpenAIEmbeddingOption {
	return func(o *OpenAIEmbedding) {
		o.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenAIEmbeddingOption {
	return func(o *OpenAIEmbedding) {
		o.logger = logger
	}
}

// NewOpenAIEmbedding creates a new OpenAIEmbedding. An empty apiKey
// falls back to the OPENAI_API_KEY environment variable; an empty
// modelName defaults to text-embedding-ada-002.
func NewOpenAIEmbedding(apiKey string, modelName string, opts ...OpenAIEmbeddingOption) *OpenAIEmbedding {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return NewOpenAIEmbeddingWithClient(openai.NewClient(apiKey), modelName, opts...)
}

// NewOpenAIEmbeddingWithClient creates a new OpenAIEmbedding with a
// pre-configured client.
func NewOpenAIEmbeddingWithClient(client *openai.Client, modelName string, opts ...OpenAIEmbeddingOption) *OpenAIEmbedding {
	var model openai.EmbeddingModel
	if modelName == "" {
		model = openai.AdaEmbeddingV2
	} else {
		model = openai.EmbeddingModel(modelName)
	}

	o := &OpenAIEmbedding{
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

// Info returns metadata about the configured model.
func (o *OpenAIEmbedding) Info() EmbeddingInfo {
	switch o.model {
	case openai.AdaEmbeddingV2:
		return OpenAIAdaEmbeddingInfo()
	case openai.SmallEmbedding3:
		return OpenAISmallEmbedding3Info()
	default:
		return DefaultEmbeddingInfo(string(o.model))
	}
}

func (o *OpenAIEmbedding) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	vecs, err := o.createEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (o *OpenAIEmbedding) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return o.GetTextEmbedding(ctx, query)
}

// GetTextEmbeddingsBatch generates embeddings for multiple texts in one
// API request.
func (o *OpenAIEmbedding) GetTextEmbeddingsBatch(ctx context.Context, texts []string, callback ProgressCallback) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := o.createEmbeddings(ctx, texts)
	if err != nil {
		return nil, err
	}
	if callback != nil {
		callback(len(texts), len(texts))
	}
	return vecs, nil
}

func (o *OpenAIEmbedding) createEmbeddings(ctx context.Context, input []string) ([][]float64, error) {
	var resp openai.EmbeddingResponse
	err := retry.Do(ctx, o.retry, func() error {
		var callErr error
		resp, callErr = o.client.CreateEmbeddings(
			ctx,
			openai.EmbeddingRequest{
				Input: input,
				Model: o.model,
			},
		)
		return callErr
	})

	if err != nil {
		o.logger.Error("CreateEmbeddings failed", "model", o.model, "error", err)
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}

	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	// Convert float32 to float64
	vecs := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float64(v)
		}
		vecs[i] = vec
	}

	return vecs, nil
}

var (
	_ EmbeddingModelWithBatch = (*OpenAIEmbedding)(nil)
	_ EmbeddingModelWithInfo  = (*OpenAIEmbedding)(nil)
)

// Package ingest builds a vector index from a review corpus, embedding
// every review in corpus row order so the index stays row-aligned.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/pkoukk/tiktoken-go"

	"github.com/vivian-xia/reviewrag/corpus"
	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/index"
)

// DefaultMaxTokens caps the tokens submitted per review. ada-002
// accepts 8191; the margin leaves room for tokenizer drift.
const DefaultMaxTokens = 8000

const tokenizerEncoding = "cl100k_base"

// Builder embeds corpus rows and writes them to an index.
type Builder struct {
	embed     embedding.EmbeddingModel
	tokenizer *tiktoken.Tiktoken
	sentences *sentences.DefaultSentenceTokenizer
	maxTokens int
	logger    *slog.Logger
	progress  embedding.ProgressCallback
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMaxTokens overrides the per-review token cap.
func WithMaxTokens(tokens int) BuilderOption {
	return func(b *Builder) {
		b.maxTokens = tokens
	}
}

// WithProgress reports embedding progress during Build.
func WithProgress(callback embedding.ProgressCallback) BuilderOption {
	return func(b *Builder) {
		b.progress = callback
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(embed embedding.EmbeddingModel, opts ...BuilderOption) (*Builder, error) {
	tokenizer, err := tiktoken.GetEncoding(tokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	sentenceTokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}

	b := &Builder{
		embed:     embed,
		tokenizer: tokenizer,
		sentences: sentenceTokenizer,
		maxTokens: DefaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build embeds every review in c and writes the vectors to w, row i of
// the index holding the embedding of corpus row i.
func (b *Builder) Build(ctx context.Context, c *corpus.Corpus, w index.Writer) error {
	if c.Len() == 0 {
		return fmt.Errorf("corpus is empty")
	}

	texts := make([]string, c.Len())
	truncated := 0
	for i, review := range c.Reviews() {
		text, wasTruncated := b.truncate(review.CombinedContext)
		texts[i] = text
		if wasTruncated {
			truncated++
		}
	}
	if truncated > 0 {
		b.logger.Warn("truncated oversized reviews", "count", truncated, "max_tokens", b.maxTokens)
	}

	vectors, err := b.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}

	if err := w.Add(ctx, vectors); err != nil {
		return fmt.Errorf("failed to write vectors to index: %w", err)
	}

	b.logger.Info("built index", "reviews", c.Len(), "truncated", truncated)
	return nil
}

func (b *Builder) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	if batcher, ok := b.embed.(embedding.EmbeddingModelWithBatch); ok {
		return batcher.GetTextEmbeddingsBatch(ctx, texts, b.progress)
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := b.embed.GetTextEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		vectors[i] = vec
		if b.progress != nil {
			b.progress(i+1, len(texts))
		}
	}
	return vectors, nil
}

// truncate cuts text at the last sentence boundary that fits the token
// cap. A single oversized sentence is cut mid-sentence at the token
// boundary instead.
func (b *Builder) truncate(text string) (string, bool) {
	if len(b.tokenizer.Encode(text, nil, nil)) <= b.maxTokens {
		return text, false
	}

	var kept strings.Builder
	for _, sentence := range b.sentences.Tokenize(text) {
		candidate := kept.String() + sentence.Text
		if len(b.tokenizer.Encode(candidate, nil, nil)) > b.maxTokens {
			break
		}
		kept.Reset()
		kept.WriteString(candidate)
	}

	if kept.Len() == 0 {
		tokens := b.tokenizer.Encode(text, nil, nil)
		return b.tokenizer.Decode(tokens[:b.maxTokens]), true
	}
	return strings.TrimSpace(kept.String()), true
}

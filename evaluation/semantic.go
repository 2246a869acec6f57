package evaluation

import (
	"context"
	"fmt"

	"github.com/vivian-xia/reviewrag/embedding"
)

// SemanticSimilarity embeds both texts independently and returns their
// cosine similarity. Neither embedding is assumed normalized.
func SemanticSimilarity(ctx context.Context, embed embedding.EmbeddingModel, reference, candidate string) (float64, error) {
	refVec, err := embed.GetTextEmbedding(ctx, reference)
	if err != nil {
		return 0, fmt.Errorf("failed to embed reference: %w", err)
	}
	candVec, err := embed.GetTextEmbedding(ctx, candidate)
	if err != nil {
		return 0, fmt.Errorf("failed to embed candidate: %w", err)
	}

	sim, err := embedding.CosineSimilarity(refVec, candVec)
	if err != nil {
		return 0, fmt.Errorf("failed to compute cosine similarity: %w", err)
	}
	return sim, nil
}

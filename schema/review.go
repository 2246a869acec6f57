// Package schema defines the core record types shared across the pipeline.
package schema

import "fmt"

// Sentiment is the category assigned to a review by the sentiment annotator.
type Sentiment string

const (
	// SentimentPositive marks a review with positive sentiment.
	SentimentPositive Sentiment = "positive"
	// SentimentNeutral marks a review with neutral sentiment.
	SentimentNeutral Sentiment = "neutral"
	// SentimentNegative marks a review with negative sentiment.
	SentimentNegative Sentiment = "negative"
	// SentimentError is the sentinel assigned when annotation failed.
	// It is never a valid model-produced category.
	SentimentError Sentiment = "error"
)

// Valid reports whether s is one of the three model-produced categories.
// The error sentinel is deliberately not valid.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// ParseSentiment converts a raw label into a Sentiment.
// Only the three valid categories parse; anything else is an error.
func ParseSentiment(label string) (Sentiment, error) {
	s := Sentiment(label)
	if !s.Valid() {
		return "", fmt.Errorf("invalid sentiment label: %q", label)
	}
	return s, nil
}

// Review is one customer review. Its position in the corpus ties it to
// the vector at the same row of the index; that alignment is managed by
// the corpus and index packages and never exposed here.
type Review struct {
	// ProductTitle identifies the product; many reviews share one.
	ProductTitle string `json:"product_title"`
	// CombinedContext is the review body plus any concatenated metadata
	// used for semantic matching.
	CombinedContext string `json:"combined_context"`
}

// RetrievedReview is a Review scored against a query.
type RetrievedReview struct {
	Review
	// SimilarityScore is the cosine similarity between the query and the
	// review embedding (dot product of unit vectors). Higher is more
	// relevant.
	SimilarityScore float64 `json:"similarity_score"`
}

// AnnotatedReview is a RetrievedReview with a sentiment label attached.
type AnnotatedReview struct {
	RetrievedReview
	Sentiment Sentiment `json:"sentiment"`
}

// Annotate attaches a sentiment label to a retrieved review.
func (r RetrievedReview) Annotate(s Sentiment) AnnotatedReview {
	return AnnotatedReview{RetrievedReview: r, Sentiment: s}
}

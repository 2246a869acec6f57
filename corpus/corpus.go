// Package corpus provides the tabular review store. Rows keep their
// load order for the lifetime of the process so that row i of the
// corpus always refers to the same logical review as row i of the
// vector index.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vivian-xia/reviewrag/schema"
)

// Default column names in the review CSV.
const (
	DefaultProductColumn = "product_title"
	DefaultContextColumn = "combined_context"
)

// Corpus is a read-only, positionally ordered collection of reviews.
type Corpus struct {
	reviews []schema.Review
}

// New creates a Corpus from pre-built reviews, preserving their order.
func New(reviews []schema.Review) *Corpus {
	return &Corpus{reviews: reviews}
}

// Loader reads a review CSV into a Corpus.
type Loader struct {
	// Delimiter is the field delimiter (default: comma).
	Delimiter rune
	// ProductColumn is the header name of the product title column.
	ProductColumn string
	// ContextColumn is the header name of the combined context column.
	ContextColumn string
}

// NewLoader creates a Loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		Delimiter:     ',',
		ProductColumn: DefaultProductColumn,
		ContextColumn: DefaultContextColumn,
	}
}

// WithDelimiter sets the field delimiter.
func (l *Loader) WithDelimiter(delimiter rune) *Loader {
	l.Delimiter = delimiter
	return l
}

// WithColumns sets the product and context column names.
func (l *Loader) WithColumns(product, context string) *Loader {
	l.ProductColumn = product
	l.ContextColumn = context
	return l
}

// Load reads the CSV at path. The first row must be a header containing
// the configured product and context columns; data rows become reviews
// in file order.
func (l *Loader) Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	return l.Read(f)
}

// Read reads CSV data from r.
func (l *Loader) Read(r io.Reader) (*Corpus, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.Delimiter

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("corpus is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}

	productIdx, contextIdx := -1, -1
	for i, name := range header {
		switch name {
		case l.ProductColumn:
			productIdx = i
		case l.ContextColumn:
			contextIdx = i
		}
	}
	if productIdx == -1 {
		return nil, fmt.Errorf("corpus header missing column %q", l.ProductColumn)
	}
	if contextIdx == -1 {
		return nil, fmt.Errorf("corpus header missing column %q", l.ContextColumn)
	}

	var reviews []schema.Review
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus row %d: %w", len(reviews)+1, err)
		}
		reviews = append(reviews, schema.Review{
			ProductTitle:    record[productIdx],
			CombinedContext: record[contextIdx],
		})
	}

	return New(reviews), nil
}

// Len returns the number of reviews.
func (c *Corpus) Len() int {
	return len(c.reviews)
}

// Review returns the review at the given row position.
func (c *Corpus) Review(row int) (schema.Review, error) {
	if row < 0 || row >= len(c.reviews) {
		return schema.Review{}, fmt.Errorf("row %d out of range [0, %d)", row, len(c.reviews))
	}
	return c.reviews[row], nil
}

// Reviews returns all reviews in row order. The returned slice must not
// be modified.
func (c *Corpus) Reviews() []schema.Review {
	return c.reviews
}

// ProductList returns the sorted set of distinct product titles.
func (c *Corpus) ProductList() []string {
	seen := make(map[string]struct{}, len(c.reviews))
	var products []string
	for _, r := range c.reviews {
		if _, ok := seen[r.ProductTitle]; !ok {
			seen[r.ProductTitle] = struct{}{}
			products = append(products, r.ProductTitle)
		}
	}
	sort.Strings(products)
	return products
}

// Rows returns the row positions whose product title equals product, in
// ascending order. An empty product selects every row. A product absent
// from the corpus yields an empty result.
func (c *Corpus) Rows(product string) []int {
	rows := make([]int, 0, len(c.reviews))
	for i, r := range c.reviews {
		if product == "" || r.ProductTitle == product {
			rows = append(rows, i)
		}
	}
	return rows
}

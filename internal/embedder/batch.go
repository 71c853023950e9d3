package embedder

import (
	"context"
	"fmt"

	"github.com/54b3r/kagent-go/internal/kerr"
)

// MaxBatchSize is the largest number of strings sent to the underlying
// Embedder in a single upstream call.
const MaxBatchSize = 16

// Result pairs an embedding vector with the token count amortized to it
// within its batch.
type Result struct {
	Embedding  []float32
	TokenCount int
}

// BatchEmbedder wraps an Embedder with batching at MaxBatchSize items per
// upstream call and per-batch failure isolation: a failing batch aborts the
// whole EmbedAll call, reporting which batch failed, rather than silently
// dropping results.
type BatchEmbedder struct {
	inner Embedder
}

// NewBatchEmbedder wraps inner with batching semantics.
func NewBatchEmbedder(inner Embedder) *BatchEmbedder {
	return &BatchEmbedder{inner: inner}
}

// EmbedAll embeds texts in batches of at most MaxBatchSize, preserving input
// order and length in the returned slice. On 0 inputs it returns 0 outputs
// and never calls the underlying embedder.
func (b *BatchEmbedder) EmbedAll(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := b.inner.Embed(ctx, batch)
		if err != nil {
			return nil, kerr.New("embedder.EmbedAll", kerr.KindUpstream,
				fmt.Errorf("batch %d (items %d-%d): %w", start/MaxBatchSize, start, end-1, err))
		}
		if len(vectors) != len(batch) {
			return nil, kerr.Newf("embedder.EmbedAll", kerr.KindInternal,
				"batch %d: expected %d embeddings, got %d", start/MaxBatchSize, len(batch), len(vectors))
		}

		tokens := estimateBatchTokens(batch)
		perItem := 0
		if len(batch) > 0 {
			perItem = tokens / len(batch)
		}
		for _, v := range vectors {
			results = append(results, Result{Embedding: v, TokenCount: perItem})
		}
	}

	return results, nil
}

// estimateBatchTokens gives a coarse token estimate for a batch, amortized
// evenly across its items by the caller.
func estimateBatchTokens(texts []string) int {
	total := 0
	for _, t := range texts {
		total += (len(t) + 3) / 4
	}
	return total
}

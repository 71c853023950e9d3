package embedder

import "context"

// Embedder converts a batch of strings into dense vector embeddings. The
// returned slice is parallel to the input: same length, same order.
// Implementations (OpenAIEmbedder, OllamaEmbedder) talk to a single remote
// model endpoint and do not enforce any batch-size limit themselves — that
// is BatchEmbedder's job.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

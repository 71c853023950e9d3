// Package indexer orchestrates the document provider, extractor, chunker,
// embedder, and vector store into one pipeline pass, and schedules that pass
// to run periodically from a single process.
package indexer

// RunOptions overrides the defaults for a single pipeline pass. An empty
// RunOptions runs with the provider's full default scope.
type RunOptions struct {
	SiteURL        string
	DaysBack       int
	SkipEmbeddings bool
}

// DocumentError records a single document's failure during a pass. Errors
// are collected here rather than aborting the pass.
type DocumentError struct {
	DocumentID string
	Title      string
	Err        string
}

// Result summarizes one completed pipeline pass.
type Result struct {
	DocumentsFound     int
	DocumentsProcessed int
	ChunksCreated      int
	Errors             []DocumentError
	DurationMs         int64
}

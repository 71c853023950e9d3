package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/54b3r/kagent-go/internal/chunker"
	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/embedder"
	"github.com/54b3r/kagent-go/internal/extractor"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// minContentLength mirrors extractor.MinContentLength; a document whose
// extracted text falls short is skipped before it ever reaches the chunker.
const minContentLength = extractor.MinContentLength

// DocumentProvider is the subset of docprovider.Client the pipeline depends
// on, narrowed to an interface so tests can substitute a fake.
type DocumentProvider interface {
	Search(ctx context.Context, opts docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error)
	DownloadBytes(ctx context.Context, doc docprovider.KnowledgeDocument) ([]byte, error)
}

// Embedder is the subset of embedder.BatchEmbedder the pipeline depends on.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([]embedder.Result, error)
}

// Pipeline orchestrates one search → extract → chunk → embed → upsert pass
// over documents discovered through a document provider's search API, with
// per-document error isolation instead of first-error-aborts-the-pass.
type Pipeline struct {
	provider DocumentProvider
	pages    extractor.PageFetcher
	embed    Embedder
	store    vectorstore.Store
	chunkOpt chunker.Options
	log      *slog.Logger
}

// New constructs a Pipeline from its dependencies. pages is typically the
// same *docprovider.Client as provider, passed separately so tests can
// substitute a fake page fetcher without a fake provider.
func New(provider DocumentProvider, pages extractor.PageFetcher, embed Embedder, store vectorstore.Store, chunkOpt chunker.Options, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		provider: provider,
		pages:    pages,
		embed:    embed,
		store:    store,
		chunkOpt: chunkOpt,
		log:      log,
	}
}

// Run executes one pipeline pass and returns its summary. A single
// document's failure never aborts the pass; see DocumentError.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Result, error) {
	start := time.Now()

	docs, err := p.provider.Search(ctx, docprovider.SearchOptions{
		SiteURL:  opts.SiteURL,
		DaysBack: opts.DaysBack,
	})
	if err != nil {
		return Result{}, fmt.Errorf("indexer: provider search: %w", err)
	}

	result := Result{DocumentsFound: len(docs)}

	for _, doc := range docs {
		if err := p.processDocument(ctx, doc, opts, &result); err != nil {
			result.Errors = append(result.Errors, DocumentError{
				DocumentID: doc.ID,
				Title:      doc.Title,
				Err:        err.Error(),
			})
			p.log.Warn("indexer: document failed",
				slog.String("documentId", doc.ID),
				slog.String("title", doc.Title),
				slog.String("error", err.Error()),
			)
			continue
		}
	}

	result.DurationMs = time.Since(start).Milliseconds()
	p.log.Info("indexer: pass complete",
		slog.Int("documentsFound", result.DocumentsFound),
		slog.Int("documentsProcessed", result.DocumentsProcessed),
		slog.Int("chunksCreated", result.ChunksCreated),
		slog.Int("errors", len(result.Errors)),
		slog.Int64("durationMs", result.DurationMs),
	)
	return result, nil
}

func (p *Pipeline) processDocument(ctx context.Context, doc docprovider.KnowledgeDocument, opts RunOptions, result *Result) error {
	raw, err := p.provider.DownloadBytes(ctx, doc)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	text, err := extractor.Extract(ctx, doc, raw, p.pages)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(text) < minContentLength {
		p.log.Debug("indexer: skipping document, insufficient content",
			slog.String("documentId", doc.ID), slog.Int("length", len(text)))
		return nil
	}

	textChunks := chunker.Chunk(text, p.chunkOpt)
	if len(textChunks) == 0 {
		return nil
	}

	var vectors [][]float32
	if !opts.SkipEmbeddings {
		texts := make([]string, len(textChunks))
		for i, c := range textChunks {
			texts[i] = c.Text
		}
		embedded, err := p.embed.EmbedAll(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		vectors = make([][]float32, len(embedded))
		for i, e := range embedded {
			vectors[i] = e.Embedding
		}
	}

	result.ChunksCreated += len(textChunks)

	if opts.SkipEmbeddings {
		result.DocumentsProcessed++
		return nil
	}

	if err := p.store.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete existing chunks: %w", err)
	}

	chunks := make([]vectorstore.DocumentChunk, len(textChunks))
	now := time.Now().UTC().UnixMilli()
	for i, c := range textChunks {
		chunks[i] = vectorstore.DocumentChunk{
			ID:                 fmt.Sprintf("%s_chunk_%d", sanitizeID(doc.ID), c.Index),
			DocumentID:         doc.ID,
			DriveID:            doc.DriveID,
			DriveItemID:        doc.DriveItemID,
			WebURL:             doc.WebURL,
			SiteURL:            doc.SiteURL,
			SiteName:           doc.SiteName,
			DocumentTitle:      doc.Title,
			FileType:           string(doc.FileType),
			ChunkIndex:         c.Index,
			ChunkText:          c.Text,
			Embedding:          vectors[i],
			DocumentModifiedAt: doc.LastModified.UnixMilli(),
			IndexedAt:          now,
		}
	}

	if err := p.store.UpsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	result.DocumentsProcessed++
	return nil
}

// sanitizeID replaces characters unsafe for use as a chunk id component.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

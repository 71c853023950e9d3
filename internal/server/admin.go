package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/indexer"
)

const (
	defaultPreviewLimit = 50
	maxPreviewLimit     = 500
)

// parseRunOptions reads siteUrl/days query params shared by the run, test,
// and preview endpoints.
func parseRunOptions(r *http.Request) indexer.RunOptions {
	q := r.URL.Query()
	opts := indexer.RunOptions{SiteURL: q.Get("siteUrl")}
	if days, err := strconv.Atoi(q.Get("days")); err == nil {
		opts.DaysBack = days
	}
	return opts
}

// handleIndexerRun handles POST /api/admin/knowledge-indexer/run. It
// triggers a full pass, bounded by the scheduler's singleton guard — a pass
// already in progress causes this to return Started=false immediately
// rather than queuing behind it.
func (s *Server) handleIndexerRun(w http.ResponseWriter, r *http.Request) {
	s.runIndexer(w, r, parseRunOptions(r))
}

// handleIndexerTest handles POST /api/admin/knowledge-indexer/test. Same as
// run, but skips the embedding and upsert steps so an operator can validate
// provider search/extract/chunk behavior without writing to the index.
func (s *Server) handleIndexerTest(w http.ResponseWriter, r *http.Request) {
	opts := parseRunOptions(r)
	opts.SkipEmbeddings = true
	s.runIndexer(w, r, opts)
}

func (s *Server) runIndexer(w http.ResponseWriter, r *http.Request, opts indexer.RunOptions) {
	start := time.Now()
	result, started := s.indexer.RunNow(r.Context(), opts)
	if !started {
		s.metrics.indexerRunsTotal.WithLabelValues("skipped").Inc()
		writeJSON(w, http.StatusOK, indexerRunResponse{Started: false})
		return
	}

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	s.metrics.indexerRunsTotal.WithLabelValues(outcome).Inc()
	s.metrics.indexerDurationSeconds.Observe(time.Since(start).Seconds())

	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, e.Title+": "+e.Err)
	}

	writeJSON(w, http.StatusOK, indexerRunResponse{
		Started:            true,
		DocumentsFound:     result.DocumentsFound,
		DocumentsProcessed: result.DocumentsProcessed,
		ChunksCreated:      result.ChunksCreated,
		Errors:             errs,
		DurationMs:         result.DurationMs,
	})
}

// handleIndexerPreview handles GET /api/admin/knowledge-indexer/preview. It
// lists the documents a run would consider without extracting, chunking,
// embedding, or upserting anything.
func (s *Server) handleIndexerPreview(w http.ResponseWriter, r *http.Request) {
	opts := parseRunOptions(r)

	limit := defaultPreviewLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}

	docs, err := s.previewer.Search(r.Context(), docprovider.SearchOptions{
		SiteURL:  opts.SiteURL,
		DaysBack: opts.DaysBack,
		MaxHits:  limit,
	})
	if err != nil {
		writeHandlerError(w, r, "server.handleIndexerPreview", err)
		return
	}

	candidates := make([]previewDocument, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, previewDocument{
			ID:           d.ID,
			Title:        d.Title,
			WebURL:       d.WebURL,
			FileType:     string(d.FileType),
			LastModified: d.LastModified.UTC().Format(time.RFC3339),
			SiteURL:      d.SiteURL,
		})
	}

	writeJSON(w, http.StatusOK, previewResponse{Candidates: candidates, Total: len(candidates)})
}

// handleIndexerStats handles GET /api/admin/knowledge-indexer/stats.
func (s *Server) handleIndexerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeHandlerError(w, r, "server.handleIndexerStats", err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		DocumentCount: stats.DocumentCount,
		StorageSize:   stats.StorageSize,
	})
}

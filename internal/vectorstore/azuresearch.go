package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AzureSearchConfig holds connection parameters for the production backend.
type AzureSearchConfig struct {
	Endpoint   string // e.g. "https://<service>.search.windows.net"
	AdminKey   string
	IndexName  string
	APIVersion string // defaults to "2024-07-01"
}

// AzureSearchStore implements Store against Azure AI Search's data-plane
// REST API, in the same hand-rolled-HTTP style as embedder.OpenAIEmbedder —
// no SDK, just json.Marshal/http.Client/json.Decode.
type AzureSearchStore struct {
	cfg    *AzureSearchConfig
	client *http.Client
	log    *slog.Logger
}

func NewAzureSearchStore(cfg *AzureSearchConfig, log *slog.Logger) *AzureSearchStore {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-07-01"
	}
	return &AzureSearchStore{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

func (s *AzureSearchStore) indexURL(path string) string {
	return fmt.Sprintf("%s/indexes('%s')%s?api-version=%s", s.cfg.Endpoint, s.cfg.IndexName, path, s.cfg.APIVersion)
}

func (s *AzureSearchStore) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("azure search: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("azure search: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.cfg.AdminKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("azure search: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("azure search: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("azure search: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("azure search: decode response: %w", err)
		}
	}
	return nil
}

// azureSearchField describes one field in the index schema.
type azureSearchField struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Searchable          bool   `json:"searchable,omitempty"`
	Filterable          bool   `json:"filterable,omitempty"`
	Sortable            bool   `json:"sortable,omitempty"`
	Retrievable         bool   `json:"retrievable"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

type azureVectorSearch struct {
	Algorithms []azureVectorAlgorithm `json:"algorithms"`
	Profiles   []azureVectorProfile   `json:"profiles"`
}

type azureVectorAlgorithm struct {
	Name               string                   `json:"name"`
	Kind               string                   `json:"kind"`
	HNSWParameters     azureHNSWParameters      `json:"hnswParameters"`
}

type azureHNSWParameters struct {
	M                  int    `json:"m"`
	EfConstruction     int    `json:"efConstruction"`
	EfSearch           int    `json:"efSearch"`
	Metric             string `json:"metric"`
}

type azureVectorProfile struct {
	Name               string `json:"name"`
	Algorithm          string `json:"algorithmConfigurationName"`
}

type azureIndexSchema struct {
	Name         string             `json:"name"`
	Fields       []azureSearchField `json:"fields"`
	VectorSearch azureVectorSearch  `json:"vectorSearch"`
}

// EnsureSchema creates the index if absent, with the HNSW profile named in
// the index schema: m=4, efConstruction=400, efSearch=500, cosine, dim=1536.
func (s *AzureSearchStore) EnsureSchema(ctx context.Context) error {
	checkURL := fmt.Sprintf("%s/indexes('%s')?api-version=%s", s.cfg.Endpoint, s.cfg.IndexName, s.cfg.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return fmt.Errorf("azure search: create request: %w", err)
	}
	req.Header.Set("api-key", s.cfg.AdminKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("azure search: check index: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	schema := azureIndexSchema{
		Name: s.cfg.IndexName,
		Fields: []azureSearchField{
			{Name: "id", Type: "Edm.String", Key: true, Retrievable: true, Filterable: true},
			{Name: "documentId", Type: "Edm.String", Filterable: true, Retrievable: true},
			{Name: "driveId", Type: "Edm.String", Filterable: true, Retrievable: true},
			{Name: "driveItemId", Type: "Edm.String", Retrievable: true},
			{Name: "webUrl", Type: "Edm.String", Retrievable: true},
			{Name: "siteUrl", Type: "Edm.String", Filterable: true, Retrievable: true},
			{Name: "siteName", Type: "Edm.String", Retrievable: true},
			{Name: "documentTitle", Type: "Edm.String", Searchable: true, Retrievable: true},
			{Name: "fileType", Type: "Edm.String", Filterable: true, Retrievable: true},
			{Name: "chunkIndex", Type: "Edm.Int32", Retrievable: true},
			{Name: "chunkText", Type: "Edm.String", Searchable: true, Retrievable: true},
			{Name: "documentModifiedAt", Type: "Edm.Int64", Sortable: true, Retrievable: true},
			{Name: "indexedAt", Type: "Edm.Int64", Sortable: true, Retrievable: true},
			{
				Name:                "embedding",
				Type:                "Collection(Edm.Single)",
				Dimensions:          EmbeddingDimension,
				VectorSearchProfile: "chunk-vector-profile",
				Retrievable:         false,
			},
		},
		VectorSearch: azureVectorSearch{
			Algorithms: []azureVectorAlgorithm{{
				Name: "chunk-hnsw",
				Kind: "hnsw",
				HNSWParameters: azureHNSWParameters{
					M:              HNSWM,
					EfConstruction: HNSWEfConstruction,
					EfSearch:       HNSWEfSearch,
					Metric:         "cosine",
				},
			}},
			Profiles: []azureVectorProfile{{
				Name:      "chunk-vector-profile",
				Algorithm: "chunk-hnsw",
			}},
		},
	}

	putURL := checkURL
	return s.do(ctx, http.MethodPut, putURL, schema, nil)
}

func chunkToDoc(c DocumentChunk, action string) map[string]any {
	return map[string]any{
		"@search.action":     action,
		"id":                 c.ID,
		"documentId":         c.DocumentID,
		"driveId":            c.DriveID,
		"driveItemId":        c.DriveItemID,
		"webUrl":             c.WebURL,
		"siteUrl":            c.SiteURL,
		"siteName":           c.SiteName,
		"documentTitle":      c.DocumentTitle,
		"fileType":           c.FileType,
		"chunkIndex":         c.ChunkIndex,
		"chunkText":          c.ChunkText,
		"embedding":          c.Embedding,
		"documentModifiedAt": c.DocumentModifiedAt,
		"indexedAt":          c.IndexedAt,
	}
}

type azureIndexResult struct {
	Key     string `json:"key"`
	Status  bool   `json:"status"`
	Code    int    `json:"statusCode"`
	Message string `json:"errorMessage"`
}

type azureIndexResponse struct {
	Value []azureIndexResult `json:"value"`
}

// UpsertChunks merges-or-uploads in batches of UpsertBatchSize. Per-item
// failures are aggregated and logged (up to five samples per batch) rather
// than returned as a hard error; a transport-level failure aborts the call.
func (s *AzureSearchStore) UpsertChunks(ctx context.Context, chunks []DocumentChunk) error {
	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		docs := make([]map[string]any, 0, len(batch))
		for _, c := range batch {
			docs = append(docs, chunkToDoc(c, "mergeOrUpload"))
		}

		var result azureIndexResponse
		if err := s.do(ctx, http.MethodPost, s.indexURL("/docs/search.index"),
			map[string]any{"value": docs}, &result); err != nil {
			return fmt.Errorf("azure search: upsert batch %d: %w", start/UpsertBatchSize, err)
		}

		failures := 0
		samples := 0
		for _, r := range result.Value {
			if r.Status {
				continue
			}
			failures++
			if samples < 5 {
				s.log.Warn("azure search: upsert item failed",
					slog.String("key", r.Key), slog.Int("statusCode", r.Code), slog.String("error", r.Message))
				samples++
			}
		}
		if failures > 0 {
			s.log.Warn("azure search: batch had item-level failures",
				slog.Int("batch", start/UpsertBatchSize), slog.Int("failed", failures), slog.Int("total", len(batch)))
		}
	}
	return nil
}

// DeleteByDocumentID discovers chunk ids via a filtered search, then issues a
// batch delete by id. No-op if none are found.
func (s *AzureSearchStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	searchBody := map[string]any{
		"search":  "*",
		"filter":  fmt.Sprintf("documentId eq '%s'", escapeODataLiteral(documentID)),
		"select":  "id",
		"top":     DeleteSearchPageSize,
	}

	var searchResult struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, s.indexURL("/docs/search.post.search"), searchBody, &searchResult); err != nil {
		return fmt.Errorf("azure search: find chunks for delete: %w", err)
	}
	if len(searchResult.Value) == 0 {
		return nil
	}

	docs := make([]map[string]any, 0, len(searchResult.Value))
	for _, v := range searchResult.Value {
		docs = append(docs, map[string]any{"@search.action": "delete", "id": v.ID})
	}

	var result azureIndexResponse
	if err := s.do(ctx, http.MethodPost, s.indexURL("/docs/search.index"),
		map[string]any{"value": docs}, &result); err != nil {
		return fmt.Errorf("azure search: delete batch: %w", err)
	}
	return nil
}

// escapeODataLiteral escapes single quotes for use inside an OData string
// literal ('eq' filter comparisons).
func escapeODataLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func buildODataFilter(opts SearchOptions) string {
	var clauses []string
	if opts.SiteURL != "" {
		clauses = append(clauses, fmt.Sprintf("siteUrl eq '%s'", escapeODataLiteral(opts.SiteURL)))
	}
	if len(opts.FileTypes) > 0 {
		var ors []string
		for _, ft := range opts.FileTypes {
			ors = append(ors, fmt.Sprintf("fileType eq '%s'", escapeODataLiteral(ft)))
		}
		clauses = append(clauses, "("+strings.Join(ors, " or ")+")")
	}
	return strings.Join(clauses, " and ")
}

type azureVectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

type azureSearchHit struct {
	Score              float32 `json:"@search.score"`
	ID                 string  `json:"id"`
	DocumentID         string  `json:"documentId"`
	DriveID            string  `json:"driveId"`
	DriveItemID        string  `json:"driveItemId"`
	WebURL             string  `json:"webUrl"`
	SiteURL            string  `json:"siteUrl"`
	SiteName           string  `json:"siteName"`
	DocumentTitle      string  `json:"documentTitle"`
	FileType           string  `json:"fileType"`
	ChunkIndex         int     `json:"chunkIndex"`
	ChunkText          string  `json:"chunkText"`
	DocumentModifiedAt int64   `json:"documentModifiedAt"`
	IndexedAt          int64   `json:"indexedAt"`
}

func (h azureSearchHit) toSearchHit() SearchHit {
	return SearchHit{
		Score: h.Score,
		Chunk: DocumentChunk{
			ID:                 h.ID,
			DocumentID:         h.DocumentID,
			DriveID:            h.DriveID,
			DriveItemID:        h.DriveItemID,
			WebURL:             h.WebURL,
			SiteURL:            h.SiteURL,
			SiteName:           h.SiteName,
			DocumentTitle:      h.DocumentTitle,
			FileType:           h.FileType,
			ChunkIndex:         h.ChunkIndex,
			ChunkText:          h.ChunkText,
			DocumentModifiedAt: h.DocumentModifiedAt,
			IndexedAt:          h.IndexedAt,
		},
	}
}

func (s *AzureSearchStore) search(ctx context.Context, query string, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = 0.6
	}

	body := map[string]any{
		"select": "id,documentId,driveId,driveItemId,webUrl,siteUrl,siteName,documentTitle,fileType,chunkIndex,chunkText,documentModifiedAt,indexedAt",
		"vectorQueries": []azureVectorQuery{{
			Kind:   "vector",
			Vector: queryEmbedding,
			Fields: "embedding",
			K:      topK,
		}},
		"top": topK,
	}
	if query != "" {
		body["search"] = query
	} else {
		body["search"] = "*"
	}
	if filter := buildODataFilter(opts); filter != "" {
		body["filter"] = filter
	}

	var result struct {
		Value []azureSearchHit `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, s.indexURL("/docs/search.post.search"), body, &result); err != nil {
		return nil, fmt.Errorf("azure search: query: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Value))
	for _, v := range result.Value {
		if v.Score < minScore {
			continue
		}
		hits = append(hits, v.toSearchHit())
	}
	return hits, nil
}

// SearchSimilar issues a pure vector query against embedding, with an
// and-joined filter built from siteUrl/fileTypes, dropping hits below
// MinScore.
func (s *AzureSearchStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error) {
	return s.search(ctx, "", queryEmbedding, opts)
}

// SearchHybrid passes the literal query text alongside the vector query;
// ranking is still dominated by vector similarity since the search text is
// only one contributor to Azure Search's RRF fusion.
func (s *AzureSearchStore) SearchHybrid(ctx context.Context, query string, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error) {
	return s.search(ctx, query, queryEmbedding, opts)
}

type azureIndexStats struct {
	DocumentCount int64 `json:"documentCount"`
	StorageSize   int64 `json:"storageSize"`
}

// GetStats reports the index's document count and storage size.
func (s *AzureSearchStore) GetStats(ctx context.Context) (Stats, error) {
	statsURL := fmt.Sprintf("%s/indexes('%s')/search.stats?api-version=%s",
		s.cfg.Endpoint, url.PathEscape(s.cfg.IndexName), s.cfg.APIVersion)

	var stats azureIndexStats
	if err := s.do(ctx, http.MethodGet, statsURL, nil, &stats); err != nil {
		return Stats{}, fmt.Errorf("azure search: stats: %w", err)
	}
	return Stats{DocumentCount: stats.DocumentCount, StorageSize: stats.StorageSize}, nil
}

// Close is a no-op — AzureSearchStore holds no long-lived connection beyond
// the shared http.Client.
func (s *AzureSearchStore) Close() error {
	return nil
}

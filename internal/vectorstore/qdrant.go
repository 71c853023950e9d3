package vectorstore

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for the dev/test Qdrant backend.
type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
	APIKey     string
	UseTLS     bool
}

// QdrantStore implements Store against a Qdrant instance, using
// DocumentChunk's fixed field set and supporting site/fileType filter
// predicates and delete-by-documentId search.
type QdrantStore struct {
	client *qdrant.Client
	cfg    *QdrantConfig
}

// NewQdrantStore constructs a QdrantStore. Call EnsureSchema before first use.
func NewQdrantStore(cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant vectorstore: create client: %w", err)
	}

	return &QdrantStore{client: client, cfg: cfg}, nil
}

// EnsureSchema creates the collection if it does not already exist, with the
// HNSW profile named in the index schema (m=4, efConstruction=400, cosine,
// dim=1536). efSearch is a per-query parameter in Qdrant, applied in Search.
func (s *QdrantStore) EnsureSchema(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant vectorstore: check collection: %w", err)
	}
	if exists {
		return nil
	}

	hnswM := uint64(HNSWM)
	hnswEf := uint64(HNSWEfConstruction)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     EmbeddingDimension,
			Distance: qdrant.Distance_Cosine,
			HnswConfig: &qdrant.HnswConfigDiff{
				M:           &hnswM,
				EfConstruct: &hnswEf,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant vectorstore: create collection %q: %w", s.cfg.Collection, err)
	}
	return nil
}

func chunkPayload(c DocumentChunk) map[string]any {
	return map[string]any{
		"documentId":         c.DocumentID,
		"driveId":            c.DriveID,
		"driveItemId":        c.DriveItemID,
		"webUrl":             c.WebURL,
		"siteUrl":            c.SiteURL,
		"siteName":           c.SiteName,
		"documentTitle":      c.DocumentTitle,
		"fileType":           c.FileType,
		"chunkIndex":         int64(c.ChunkIndex),
		"chunkText":          c.ChunkText,
		"documentModifiedAt": c.DocumentModifiedAt,
		"indexedAt":          c.IndexedAt,
	}
}

func chunkFromPayload(id string, score float32, payload map[string]*qdrant.Value) SearchHit {
	c := DocumentChunk{ID: id}
	get := func(k string) string {
		if v, ok := payload[k]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	c.DocumentID = get("documentId")
	c.DriveID = get("driveId")
	c.DriveItemID = get("driveItemId")
	c.WebURL = get("webUrl")
	c.SiteURL = get("siteUrl")
	c.SiteName = get("siteName")
	c.DocumentTitle = get("documentTitle")
	c.FileType = get("fileType")
	c.ChunkText = get("chunkText")
	if v, ok := payload["chunkIndex"]; ok {
		c.ChunkIndex = int(v.GetIntegerValue())
	}
	if v, ok := payload["documentModifiedAt"]; ok {
		c.DocumentModifiedAt = v.GetIntegerValue()
	}
	if v, ok := payload["indexedAt"]; ok {
		c.IndexedAt = v.GetIntegerValue()
	}
	return SearchHit{Chunk: c, Score: score}
}

// UpsertChunks stores chunks in batches of UpsertBatchSize. Qdrant point ids
// must be UUID or unsigned integers, so the chunk's URL-safe string id is
// hashed into a deterministic UUID via NewIDUUID's string form; the original
// string id is preserved in the payload as "chunkId" for lookups.
func (s *QdrantStore) UpsertChunks(ctx context.Context, chunks []DocumentChunk) error {
	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		points := make([]*qdrant.PointStruct, 0, len(batch))
		for _, c := range batch {
			payload := chunkPayload(c)
			payload["chunkId"] = c.ID
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(pointUUID(c.ID)),
				Vectors: qdrant.NewVectors(c.Embedding...),
				Payload: qdrant.NewValueMap(payload),
			})
		}

		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.cfg.Collection,
			Points:         points,
		}); err != nil {
			return fmt.Errorf("qdrant vectorstore: upsert batch %d: %w", start/UpsertBatchSize, err)
		}
	}
	return nil
}

// DeleteByDocumentID discovers every chunk for documentID via a filtered
// scroll, then deletes them by id. No-op if none are found.
func (s *QdrantStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	limit := uint32(DeleteSearchPageSize)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.cfg.Collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeyword("documentId", documentID)},
		},
		Limit: &limit,
	})
	if err != nil {
		return fmt.Errorf("qdrant vectorstore: scroll for delete: %w", err)
	}
	if len(points) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.Id)
	}

	if _, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.cfg.Collection,
		Points:         qdrant.NewPointsSelector(ids...),
	}); err != nil {
		return fmt.Errorf("qdrant vectorstore: delete: %w", err)
	}
	return nil
}

func buildFilter(opts SearchOptions) *qdrant.Filter {
	var must []*qdrant.Condition
	if opts.SiteURL != "" {
		must = append(must, qdrant.NewMatchKeyword("siteUrl", opts.SiteURL))
	}
	if len(opts.FileTypes) > 0 {
		must = append(must, qdrant.NewMatchKeywords("fileType", opts.FileTypes...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// SearchSimilar issues a pure-vector query with efSearch applied as the
// per-request search parameter, and drops hits below MinScore.
func (s *QdrantStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = 0.6
	}

	limit := uint64(topK)
	efSearch := uint64(HNSWEfSearch)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         buildFilter(opts),
		Limit:          &limit,
		Params:         &qdrant.SearchParams{HnswEf: &efSearch},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant vectorstore: search: %w", err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		chunkID := ""
		if v, ok := r.Payload["chunkId"]; ok {
			chunkID = v.GetStringValue()
		}
		hits = append(hits, chunkFromPayload(chunkID, r.Score, r.Payload))
	}
	return hits, nil
}

// SearchHybrid ignores the query text and runs SearchSimilar (Qdrant has no
// native BM25+vector hybrid mode in the version used here), so ranking is
// by vector similarity only — the text argument is accepted for interface
// symmetry with the Azure Search backend.
func (s *QdrantStore) SearchHybrid(ctx context.Context, query string, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error) {
	_ = query
	return s.SearchSimilar(ctx, queryEmbedding, opts)
}

// GetStats reports the collection's point count.
func (s *QdrantStore) GetStats(ctx context.Context) (Stats, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.cfg.Collection})
	if err != nil {
		return Stats{}, fmt.Errorf("qdrant vectorstore: count: %w", err)
	}
	return Stats{DocumentCount: int64(count)}, nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// pointUUID derives a stable, deterministic UUID-format string from an
// arbitrary chunk id, since Qdrant point ids must be UUIDs or unsigned
// integers while this domain's chunk ids are URL-safe strings
// (<documentId>_chunk_<index>). The same chunk id always maps to the same
// point id, which is what makes re-indexing a document idempotent.
func pointUUID(id string) string {
	h := fnv.New128a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum(nil)

	sum[6] = (sum[6] & 0x0f) | 0x40 // version 4
	sum[8] = (sum[8] & 0x3f) | 0x80 // variant 10

	return fmt.Sprintf("%x-%x-%x-%x-%x",
		sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

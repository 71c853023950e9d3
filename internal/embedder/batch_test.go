package embedder

import (
	"context"
	"errors"
	"testing"
)

type fakeEmbedder struct {
	calls  [][]string
	vecLen int
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.vecLen)
	}
	return out, nil
}

func Test_BatchEmbedder_EmptyInput(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{vecLen: 4}
	b := NewBatchEmbedder(fake)

	results, err := b.EmbedAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedAll(nil) error = %v", err)
	}
	if results != nil {
		t.Errorf("EmbedAll(nil) = %v, want nil", results)
	}
	if len(fake.calls) != 0 {
		t.Errorf("EmbedAll(nil) called the underlying embedder %d times, want 0", len(fake.calls))
	}
}

func Test_BatchEmbedder_SplitsAtMaxBatchSize(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{vecLen: 3}
	b := NewBatchEmbedder(fake)

	texts := make([]string, MaxBatchSize+5)
	for i := range texts {
		texts[i] = "chunk text"
	}

	results, err := b.EmbedAll(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedAll error = %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("EmbedAll returned %d results, want %d", len(results), len(texts))
	}
	if len(fake.calls) != 2 {
		t.Fatalf("underlying embedder called %d times, want 2 (one full batch + one remainder)", len(fake.calls))
	}
	if len(fake.calls[0]) != MaxBatchSize {
		t.Errorf("first batch size = %d, want %d", len(fake.calls[0]), MaxBatchSize)
	}
	if len(fake.calls[1]) != 5 {
		t.Errorf("second batch size = %d, want 5", len(fake.calls[1]))
	}
}

func Test_BatchEmbedder_PropagatesUpstreamError(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{err: errors.New("upstream down")}
	b := NewBatchEmbedder(fake)

	_, err := b.EmbedAll(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("EmbedAll with failing embedder returned nil error")
	}
}

func Test_BatchEmbedder_TokenCountPopulated(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{vecLen: 2}
	b := NewBatchEmbedder(fake)

	results, err := b.EmbedAll(context.Background(), []string{"abcdefgh"})
	if err != nil {
		t.Fatalf("EmbedAll error = %v", err)
	}
	if results[0].TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2 (ceil(8/4))", results[0].TokenCount)
	}
}

package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/studyvault/internal/domain"
	"github.com/kailas-cloud/studyvault/internal/retry"
)

// mockExtractor implements both extractor interfaces for tests.
type mockExtractor struct {
	extractFn func(ctx context.Context, locator string) (string, error)
}

func (m *mockExtractor) ExtractText(ctx context.Context, locator string) (string, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, locator)
	}
	return "extracted text", nil
}

type mockChunker struct {
	chunkFn func(text string) ([]domain.Chunk, error)
}

func (m *mockChunker) Chunk(text string) ([]domain.Chunk, error) {
	if m.chunkFn != nil {
		return m.chunkFn(text)
	}
	return []domain.Chunk{
		domain.NewChunk("chunk one", 0),
		domain.NewChunk("chunk two", 1),
	}, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, texts []string) ([][]float32, error)
	calls   int
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

type mockIndex struct {
	ensureFn func(ctx context.Context) error
	upsertFn func(ctx context.Context, records []domain.VectorRecord) ([]string, error)
	searchFn func(ctx context.Context, vector []float32, userID int64, topK int) ([]domain.Match, error)
	deleteFn func(ctx context.Context, externalRef, userID int64) (int, error)

	upserts [][]domain.VectorRecord
	deletes int
}

func (m *mockIndex) EnsureCollection(ctx context.Context) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockIndex) Upsert(ctx context.Context, records []domain.VectorRecord) ([]string, error) {
	m.upserts = append(m.upserts, records)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, records)
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}

func (m *mockIndex) Search(
	ctx context.Context, vector []float32, userID int64, topK int,
) ([]domain.Match, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, userID, topK)
	}
	return nil, nil
}

func (m *mockIndex) DeleteByRef(ctx context.Context, externalRef, userID int64) (int, error) {
	m.deletes++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, externalRef, userID)
	}
	return 0, nil
}

type testDeps struct {
	extractor *mockExtractor
	chunker   *mockChunker
	embedder  *mockEmbedder
	index     *mockIndex
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		extractor: &mockExtractor{},
		chunker:   &mockChunker{},
		embedder:  &mockEmbedder{},
		index:     &mockIndex{},
	}

	nextID := 0
	svc := New(Config{
		Documents:   deps.extractor,
		Transcripts: deps.extractor,
		Chunker:     deps.chunker,
		Embedder:    deps.embedder,
		Index:       deps.index,
		Retry:       retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond},
		Now:         func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			nextID++
			return fmt.Sprintf("id-%d", nextID)
		},
	})
	return svc, deps
}

func testDoc(t *testing.T, sourceType domain.SourceType) domain.SourceDocument {
	t.Helper()
	doc, err := domain.NewSourceDocument(7, "ada", "Notes", sourceType, "/tmp/notes.pdf", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

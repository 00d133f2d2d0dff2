package pipeline

import (
	"context"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// DocumentExtractor turns a file path into plain text.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// TranscriptExtractor turns a video URL into plain transcript text.
type TranscriptExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Chunker splits normalized text into ordered, bounded segments.
type Chunker interface {
	Chunk(text string) ([]domain.Chunk, error)
}

// Embedder vectorizes a batch of texts, output aligned with input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the vector collection contract.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []domain.VectorRecord) ([]string, error)
	Search(ctx context.Context, vector []float32, userID int64, topK int) ([]domain.Match, error)
	DeleteByRef(ctx context.Context, externalRef, userID int64) (int, error)
}

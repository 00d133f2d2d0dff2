// Package pipeline composes extraction, chunking, embedding and indexing
// into the upload, search and delete workflows.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/domain"
	emboai "github.com/kailas-cloud/studyvault/internal/embedding/openai"
	"github.com/kailas-cloud/studyvault/internal/index"
	"github.com/kailas-cloud/studyvault/internal/metrics"
	"github.com/kailas-cloud/studyvault/internal/retry"
)

// DefaultTopK is the search result limit when the caller passes none.
const DefaultTopK = 5

// UploadResult reports a completed upload: the ids of the written points
// and how many chunks the document produced.
type UploadResult struct {
	PointIDs   []string
	ChunkCount int
}

// Config assembles a pipeline Service.
type Config struct {
	Documents   DocumentExtractor
	Transcripts TranscriptExtractor
	Chunker     Chunker
	Embedder    Embedder
	Index       Index
	Retry       retry.Policy
	// BatchSize bounds how many chunk texts go into one embedding request.
	BatchSize int
	Logger    *zap.Logger

	// EmbedRetryable and IndexRetryable override transient-failure
	// classification (tests). Defaults classify provider and store errors.
	EmbedRetryable func(error) bool
	IndexRetryable func(error) bool

	// Now and NewID override time and id generation (tests).
	Now   func() time.Time
	NewID func() string
}

// Service is the pipeline orchestrator. It holds no mutable state and is
// safe for concurrent use; the vector collection provides its own atomicity.
type Service struct {
	docs        DocumentExtractor
	transcripts TranscriptExtractor
	chunker     Chunker
	embedder    Embedder
	index       Index
	retry       retry.Policy
	batchSize   int
	logger      *zap.Logger

	embedRetryable func(error) bool
	indexRetryable func(error) bool
	now            func() time.Time
	newID          func() string
}

// New creates a pipeline service.
func New(cfg Config) *Service {
	s := &Service{
		docs:           cfg.Documents,
		transcripts:    cfg.Transcripts,
		chunker:        cfg.Chunker,
		embedder:       cfg.Embedder,
		index:          cfg.Index,
		retry:          cfg.Retry,
		batchSize:      cfg.BatchSize,
		logger:         cfg.Logger,
		embedRetryable: cfg.EmbedRetryable,
		indexRetryable: cfg.IndexRetryable,
		now:            cfg.Now,
		newID:          cfg.NewID,
	}
	if s.retry.MaxAttempts <= 0 {
		s.retry = retry.Default()
	}
	if s.batchSize <= 0 {
		s.batchSize = 64
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.embedRetryable == nil {
		s.embedRetryable = emboai.IsRetryable
	}
	if s.indexRetryable == nil {
		s.indexRetryable = index.IsRetryable
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// ProcessDocumentUpload runs extract, chunk, embed and index for a
// file-backed document.
func (s *Service) ProcessDocumentUpload(ctx context.Context, doc domain.SourceDocument) (UploadResult, error) {
	return s.process(ctx, doc, s.docs)
}

// ProcessTranscriptUpload runs the same workflow with transcript extraction.
func (s *Service) ProcessTranscriptUpload(ctx context.Context, doc domain.SourceDocument) (UploadResult, error) {
	return s.process(ctx, doc, s.transcripts)
}

// textExtractor is the shape shared by document and transcript extraction.
type textExtractor interface {
	ExtractText(ctx context.Context, locator string) (string, error)
}

// process is the shared upload workflow. Any stage failure surfaces the
// originating error with no vectors committed for the document: the index
// writes the whole document as one atomic batch, and a failure after a
// possible partial write triggers a compensating delete.
func (s *Service) process(
	ctx context.Context, doc domain.SourceDocument, extractor textExtractor,
) (UploadResult, error) {
	start := s.now()
	sourceType := string(doc.Type())

	result, err := s.run(ctx, doc, extractor)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues(sourceType, "error").Inc()
		s.logger.Error("upload failed",
			zap.Int64("user_id", doc.UserID()),
			zap.Int64("external_ref", doc.ExternalRef()),
			zap.String("source_type", sourceType),
			zap.Error(err),
		)
		return UploadResult{}, err
	}

	metrics.IngestsTotal.WithLabelValues(sourceType, "success").Inc()
	metrics.IngestDuration.WithLabelValues(sourceType).Observe(s.now().Sub(start).Seconds())
	metrics.IngestChunksTotal.WithLabelValues(sourceType).Add(float64(result.ChunkCount))

	s.logger.Info("upload complete",
		zap.Int64("user_id", doc.UserID()),
		zap.Int64("external_ref", doc.ExternalRef()),
		zap.String("title", doc.Title()),
		zap.String("source_type", sourceType),
		zap.Int("chunks", result.ChunkCount),
	)
	return result, nil
}

func (s *Service) run(
	ctx context.Context, doc domain.SourceDocument, extractor textExtractor,
) (UploadResult, error) {
	text, err := extractor.ExtractText(ctx, doc.Locator())
	if err != nil {
		return UploadResult{}, fmt.Errorf("extract %s: %w", doc.Locator(), err)
	}

	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return UploadResult{}, fmt.Errorf("chunk %s: %w", doc.Locator(), err)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return UploadResult{}, err
	}

	records := s.buildRecords(doc, chunks, vectors)

	if err := s.index.EnsureCollection(ctx); err != nil {
		return UploadResult{}, fmt.Errorf("ensure collection: %w", err)
	}

	ids, err := s.upsertWithCompensation(ctx, doc, records)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{PointIDs: ids, ChunkCount: len(chunks)}, nil
}

// embedChunks vectorizes chunk texts in bounded batches, each batch under
// the retry policy. Output is aligned with the chunk order.
func (s *Service) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text())
		}

		var batch [][]float32
		err := s.retry.Do(ctx, s.embedRetryable, func(ctx context.Context) error {
			var embedErr error
			batch, embedErr = s.embedder.EmbedBatch(ctx, texts)
			return embedErr
		})
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d..%d: %w", start, end-1, err)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// buildRecords pairs chunks with their vectors. All points of one upload
// share a single ingestion timestamp; ids are freshly generated and never
// reused across re-ingestion.
func (s *Service) buildRecords(
	doc domain.SourceDocument, chunks []domain.Chunk, vectors [][]float32,
) []domain.VectorRecord {
	ingestedAt := s.now().UTC()

	records := make([]domain.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.VectorRecord{
			ID:     s.newID(),
			Vector: vectors[i],
			Payload: domain.Payload{
				Text:          chunk.Text(),
				UserID:        doc.UserID(),
				UserName:      doc.UserName(),
				Title:         doc.Title(),
				SourceType:    doc.Type(),
				SourceLocator: doc.Locator(),
				ExternalRef:   doc.ExternalRef(),
				ChunkIndex:    chunk.Index(),
				IngestedAt:    ingestedAt,
			},
		}
	}
	return records
}

// upsertWithCompensation writes the batch under the retry policy. If the
// write ultimately fails, any points that may have landed are removed so no
// partially indexed document stays visible.
func (s *Service) upsertWithCompensation(
	ctx context.Context, doc domain.SourceDocument, records []domain.VectorRecord,
) ([]string, error) {
	var ids []string
	err := s.retry.Do(ctx, s.indexRetryable, func(ctx context.Context) error {
		var upsertErr error
		ids, upsertErr = s.index.Upsert(ctx, records)
		return upsertErr
	})
	if err == nil {
		return ids, nil
	}

	// Compensating delete on a fresh context: the upload context may be the
	// reason the write failed.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if _, delErr := s.index.DeleteByRef(cleanupCtx, doc.ExternalRef(), doc.UserID()); delErr != nil {
		s.logger.Error("compensating delete failed",
			zap.Int64("external_ref", doc.ExternalRef()),
			zap.Int64("user_id", doc.UserID()),
			zap.Error(delErr),
		)
	}

	return nil, fmt.Errorf("index document %d: %w", doc.ExternalRef(), err)
}

// SearchDocuments embeds the query and returns ranked, user-scoped results.
// The best chunk of each distinct source document is flagged primary; the
// remaining chunks stay available as context. Ordering is by descending
// score.
func (s *Service) SearchDocuments(
	ctx context.Context, userID int64, query string, topK int,
) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	var vectors [][]float32
	err := s.retry.Do(ctx, s.embedRetryable, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = s.embedder.EmbedBatch(ctx, []string{query})
		return embedErr
	})
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Search(ctx, vectors[0], userID, topK)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	seen := make(map[int64]bool, len(matches))
	for _, m := range matches {
		ref := m.Payload.ExternalRef
		results = append(results, domain.SearchResult{
			Text:          m.Payload.Text,
			Score:         m.Score,
			Title:         m.Payload.Title,
			SourceType:    m.Payload.SourceType,
			SourceLocator: m.Payload.SourceLocator,
			ExternalRef:   ref,
			ChunkIndex:    m.Payload.ChunkIndex,
			Primary:       !seen[ref],
		})
		seen[ref] = true
	}

	metrics.SearchesTotal.WithLabelValues("success").Inc()
	s.logger.Debug("search complete",
		zap.Int64("user_id", userID),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// DeleteDocument removes all vectors of one document for one user and
// returns how many points were removed. Zero is a valid result: the caller
// may race a delete against an already-removed item.
func (s *Service) DeleteDocument(ctx context.Context, externalRef, userID int64) (int, error) {
	deleted, err := s.index.DeleteByRef(ctx, externalRef, userID)
	if err != nil {
		return 0, fmt.Errorf("delete document %d: %w", externalRef, err)
	}

	metrics.PointsDeletedTotal.Add(float64(deleted))
	s.logger.Info("deleted document vectors",
		zap.Int64("external_ref", externalRef),
		zap.Int64("user_id", userID),
		zap.Int("points", deleted),
	)
	return deleted, nil
}

// Package studyvault turns user documents and video transcripts into
// searchable vector records: extract text, chunk it, embed the chunks, and
// store them per user in a RediSearch-backed collection.
package studyvault

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/chunker"
	"github.com/kailas-cloud/studyvault/internal/config"
	"github.com/kailas-cloud/studyvault/internal/domain"
	emboai "github.com/kailas-cloud/studyvault/internal/embedding/openai"
	"github.com/kailas-cloud/studyvault/internal/extract/pdf"
	"github.com/kailas-cloud/studyvault/internal/extract/youtube"
	"github.com/kailas-cloud/studyvault/internal/index"
	"github.com/kailas-cloud/studyvault/internal/pipeline"
	"github.com/kailas-cloud/studyvault/internal/retry"
)

// SearchResult is one ranked hit returned by SearchDocuments.
type SearchResult = domain.SearchResult

// UploadResult reports a completed upload.
type UploadResult = pipeline.UploadResult

// Client is the library entry point. One Client holds one vector store
// connection and is safe for concurrent use.
type Client struct {
	store    *index.Store
	pipeline *pipeline.Service
	logger   *zap.Logger
}

// New builds a Client from configuration: connects to the vector store,
// waits for it to become ready, and wires the processing pipeline.
func New(cfg config.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := index.NewStore(index.StoreConfig{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, err
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(context.Background(), readiness); err != nil {
		store.Close()
		return nil, err
	}

	collection := index.NewCollection(store, index.CollectionConfig{
		Name:      cfg.Index.Collection,
		KeyPrefix: cfg.Index.KeyPrefix,
		Dimension: cfg.Embedding.Dimensions,
		Logger:    logger,
	})

	embedder := emboai.NewEmbedder(&emboai.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	svc := pipeline.New(pipeline.Config{
		Documents: pdf.NewExtractor(logger),
		Transcripts: youtube.NewExtractor(youtube.Config{
			Languages: cfg.Transcript.Languages,
			BaseURL:   cfg.Transcript.BaseURL,
			Logger:    logger,
		}),
		Chunker:  chunker.New(cfg.Chunking.MaxSize, cfg.Chunking.Overlap),
		Embedder: embedder,
		Index:    collection,
		Retry: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		},
		BatchSize: cfg.Embedding.BatchSize,
		Logger:    logger,
	})

	return &Client{store: store, pipeline: svc, logger: logger}, nil
}

// ProcessDocumentUpload ingests a PDF file for one user. The externalRef is
// the caller's library item id; re-uploading the same ref adds new points
// (delete first for replace semantics).
func (c *Client) ProcessDocumentUpload(
	ctx context.Context, path string, userID int64, userName, title string, externalRef int64,
) (UploadResult, error) {
	doc, err := domain.NewSourceDocument(
		userID, userName, title, domain.SourceDocumentType, path, externalRef,
	)
	if err != nil {
		return UploadResult{}, err
	}
	return c.pipeline.ProcessDocumentUpload(ctx, doc)
}

// ProcessTranscriptUpload ingests a video transcript by URL for one user.
func (c *Client) ProcessTranscriptUpload(
	ctx context.Context, url string, userID int64, userName, title string, externalRef int64,
) (UploadResult, error) {
	doc, err := domain.NewSourceDocument(
		userID, userName, title, domain.SourceTranscriptType, url, externalRef,
	)
	if err != nil {
		return UploadResult{}, err
	}
	return c.pipeline.ProcessTranscriptUpload(ctx, doc)
}

// SearchDocuments returns the topK most relevant chunks across the user's
// library, ranked by similarity. topK <= 0 uses the default limit.
func (c *Client) SearchDocuments(
	ctx context.Context, userID int64, query string, topK int,
) ([]SearchResult, error) {
	return c.pipeline.SearchDocuments(ctx, userID, query, topK)
}

// DeleteDocument removes all vectors of one library item for one user and
// returns the number of points removed.
func (c *Client) DeleteDocument(ctx context.Context, externalRef, userID int64) (int, error) {
	return c.pipeline.DeleteDocument(ctx, externalRef, userID)
}

// Close releases the vector store connection.
func (c *Client) Close() {
	c.store.Close()
}

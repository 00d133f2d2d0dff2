package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ingestion and retrieval pipeline. Each maps to one
// failure class the caller is expected to translate into its own responses.
var (
	// ErrExtraction signals an unreadable or empty source.
	ErrExtraction = errors.New("source extraction failed")
	// ErrNoTranscript signals that no preferred language had a transcript.
	ErrNoTranscript = fmt.Errorf("no transcript available: %w", ErrExtraction)
	// ErrChunking signals that normalized text was empty.
	ErrChunking = errors.New("chunking failed: empty text")
	// ErrEmbedding signals an embedding provider failure after retries.
	ErrEmbedding = errors.New("embedding provider failed")
	// ErrIndex signals a vector index failure.
	ErrIndex = errors.New("vector index failure")
	// ErrDimensionMismatch signals that an existing collection does not match
	// the configured vector dimension or distance metric.
	ErrDimensionMismatch = fmt.Errorf("collection dimension mismatch: %w", ErrIndex)
)

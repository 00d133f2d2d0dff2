package domain

import "time"

// Payload is the metadata stored alongside each vector point. It carries
// everything search needs for user scoping and attribution.
type Payload struct {
	Text          string
	UserID        int64
	UserName      string
	Title         string
	SourceType    SourceType
	SourceLocator string
	ExternalRef   int64
	ChunkIndex    int
	IngestedAt    time.Time
}

// VectorRecord is one embedding plus its payload. IDs are generated per
// ingestion and never reused across re-ingestion of the same document.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Match is a raw scored hit from the vector index, before orchestrator
// deduplication.
type Match struct {
	ID      string
	Score   float64
	Payload Payload
}

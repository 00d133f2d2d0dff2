package domain

// SearchResult is one ranked hit returned to the caller. Primary marks the
// best-scoring chunk of each distinct source document; further chunks of the
// same document stay in the list as supporting context.
type SearchResult struct {
	Text          string
	Score         float64
	Title         string
	SourceType    SourceType
	SourceLocator string
	ExternalRef   int64
	ChunkIndex    int
	Primary       bool
}

package domain

// Chunk is one bounded text segment derived from a source document. Chunks
// are ephemeral: they exist between chunking and indexing and are never
// persisted standalone.
type Chunk struct {
	text  string
	index int
}

// NewChunk creates a chunk with its 0-based position within the document.
func NewChunk(text string, index int) Chunk {
	return Chunk{text: text, index: index}
}

// Text returns the segment text.
func (c Chunk) Text() string { return c.text }

// Index returns the 0-based sequential position within the document.
func (c Chunk) Index() int { return c.index }

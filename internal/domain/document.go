package domain

import "fmt"

// SourceType discriminates the two ingestion variants.
type SourceType string

const (
	// SourceDocumentType is a file-backed source (PDF path).
	SourceDocumentType SourceType = "document"
	// SourceTranscriptType is a video transcript source (URL).
	SourceTranscriptType SourceType = "transcript"
)

// Valid reports whether the source type is one of the known variants.
func (t SourceType) Valid() bool {
	return t == SourceDocumentType || t == SourceTranscriptType
}

// SourceDocument describes one source to ingest: who owns it, where its raw
// content lives, and the caller's library record it belongs to. Immutable
// during processing.
type SourceDocument struct {
	userID      int64
	userName    string
	title       string
	sourceType  SourceType
	locator     string
	externalRef int64
}

// NewSourceDocument validates and creates a SourceDocument.
func NewSourceDocument(
	userID int64, userName, title string,
	sourceType SourceType, locator string, externalRef int64,
) (SourceDocument, error) {
	if userID <= 0 {
		return SourceDocument{}, fmt.Errorf("user id must be positive, got %d", userID)
	}
	if title == "" {
		return SourceDocument{}, fmt.Errorf("title is required")
	}
	if !sourceType.Valid() {
		return SourceDocument{}, fmt.Errorf("unknown source type %q", sourceType)
	}
	if locator == "" {
		return SourceDocument{}, fmt.Errorf("source locator is required")
	}
	if externalRef <= 0 {
		return SourceDocument{}, fmt.Errorf("external reference id must be positive, got %d", externalRef)
	}
	return SourceDocument{
		userID:      userID,
		userName:    userName,
		title:       title,
		sourceType:  sourceType,
		locator:     locator,
		externalRef: externalRef,
	}, nil
}

// UserID returns the owning user id.
func (d SourceDocument) UserID() int64 { return d.userID }

// UserName returns the owner's display name.
func (d SourceDocument) UserName() string { return d.userName }

// Title returns the document title.
func (d SourceDocument) Title() string { return d.title }

// Type returns the source kind.
func (d SourceDocument) Type() SourceType { return d.sourceType }

// Locator returns the file path or URL of the raw source.
func (d SourceDocument) Locator() string { return d.locator }

// ExternalRef returns the caller-supplied library item id.
func (d SourceDocument) ExternalRef() int64 { return d.externalRef }

package domain

import (
	"errors"
	"testing"
)

func TestNewSourceDocument_Valid(t *testing.T) {
	doc, err := NewSourceDocument(7, "ada", "Notes", SourceDocumentType, "/tmp/notes.pdf", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.UserID() != 7 || doc.UserName() != "ada" || doc.Title() != "Notes" {
		t.Errorf("unexpected owner fields: %+v", doc)
	}
	if doc.Type() != SourceDocumentType {
		t.Errorf("unexpected type: %q", doc.Type())
	}
	if doc.Locator() != "/tmp/notes.pdf" || doc.ExternalRef() != 42 {
		t.Errorf("unexpected source fields: %+v", doc)
	}
}

func TestNewSourceDocument_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		title      string
		sourceType SourceType
		locator    string
		ref        int64
	}{
		{"zero_user", 0, "Notes", SourceDocumentType, "/p", 1},
		{"negative_user", -1, "Notes", SourceDocumentType, "/p", 1},
		{"empty_title", 7, "", SourceDocumentType, "/p", 1},
		{"unknown_type", 7, "Notes", SourceType("audio"), "/p", 1},
		{"empty_locator", 7, "Notes", SourceTranscriptType, "", 1},
		{"zero_ref", 7, "Notes", SourceDocumentType, "/p", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSourceDocument(tc.userID, "ada", tc.title, tc.sourceType, tc.locator, tc.ref)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSourceType_Valid(t *testing.T) {
	if !SourceDocumentType.Valid() || !SourceTranscriptType.Valid() {
		t.Error("known types must be valid")
	}
	if SourceType("audio").Valid() {
		t.Error("unknown type must be invalid")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !errors.Is(ErrNoTranscript, ErrExtraction) {
		t.Error("ErrNoTranscript must classify as ErrExtraction")
	}
	if !errors.Is(ErrDimensionMismatch, ErrIndex) {
		t.Error("ErrDimensionMismatch must classify as ErrIndex")
	}
	if errors.Is(ErrChunking, ErrExtraction) {
		t.Error("ErrChunking must not classify as ErrExtraction")
	}
}

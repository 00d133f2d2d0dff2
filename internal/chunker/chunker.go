// Package chunker splits normalized text into overlapping, bounded-size
// segments. Splitting prefers natural boundaries (paragraph break, then
// line break, then whitespace) and falls back to a hard cut only when no
// boundary fits within the size limit. Chunking is a pure function:
// identical input and configuration always produce identical boundaries.
package chunker

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// DefaultMaxSize is the default chunk size in runes.
const DefaultMaxSize = 400

// DefaultOverlap is the default overlap between adjacent chunks in runes.
const DefaultOverlap = 40

// Chunker splits text into overlapping segments of bounded size.
type Chunker struct {
	maxSize int
	overlap int
}

// New creates a chunker. Out-of-range values fall back to defaults, and
// overlap is capped below maxSize so every step makes forward progress.
func New(maxSize, overlap int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}
}

// Chunk splits text into ordered chunks. Each chunk holds at most maxSize
// runes, and each chunk after the first begins overlap runes before the
// previous chunk's end. Returns domain.ErrChunking when the input is empty
// after normalization.
func (c *Chunker) Chunk(text string) ([]domain.Chunk, error) {
	norm := Normalize(text)
	if norm == "" {
		return nil, domain.ErrChunking
	}

	runes := []rune(norm)
	if len(runes) <= c.maxSize {
		return []domain.Chunk{domain.NewChunk(norm, 0)}, nil
	}

	var chunks []domain.Chunk
	start := 0
	index := 0

	for start < len(runes) {
		end := start + c.maxSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.cut(runes, start, end)
		}

		chunks = append(chunks, domain.NewChunk(string(runes[start:end]), index))
		index++

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Overlap would revisit the whole chunk; step past it instead.
			next = end
		}
		start = next
	}

	return chunks, nil
}

// separators, in preference order. The empty string marks the hard cut.
var separators = []string{"\n\n", "\n", " "}

// cut finds the boundary-aligned end position for a chunk starting at start
// with tentative end limit. It scans backward from limit for the best
// separator, but never gives up more than half the chunk; if no separator
// lands in that window the cut is hard at limit.
func (c *Chunker) cut(runes []rune, start, limit int) int {
	floor := start + c.maxSize/2

	for _, sep := range separators {
		if pos := lastBoundary(runes, floor, limit, []rune(sep)); pos > 0 {
			return pos
		}
	}
	return limit
}

// lastBoundary returns the position just after the last occurrence of sep
// whose end falls within (floor, limit], or 0 when there is none.
func lastBoundary(runes []rune, floor, limit int, sep []rune) int {
	for end := limit; end-len(sep) >= floor; end-- {
		if hasSepAt(runes, end-len(sep), sep) {
			return end
		}
	}
	return 0
}

func hasSepAt(runes []rune, pos int, sep []rune) bool {
	if pos < 0 || pos+len(sep) > len(runes) {
		return false
	}
	for i, r := range sep {
		if runes[pos+i] != r {
			return false
		}
	}
	return true
}

var (
	crlfRe     = regexp.MustCompile(`\r\n?`)
	manyBlanks = regexp.MustCompile(`\n{3,}`)
	lineSpace  = regexp.MustCompile(`[ \t]+`)
)

// Normalize canonicalizes whitespace so that chunk boundaries are stable
// across re-ingestion: CRLF to LF, runs of spaces and tabs to one space,
// three or more newlines to a paragraph break, and trimmed ends.
func Normalize(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = lineSpace.ReplaceAllString(text, " ")
	text = manyBlanks.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

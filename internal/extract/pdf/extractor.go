// Package pdf extracts plain text from PDF documents using pdfcpu.
// Page content streams are extracted to a scratch directory and their
// text-showing operators decoded into reading-order plain text.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// Extractor reads PDF files and returns their concatenated page text.
type Extractor struct {
	tempDir string
	logger  *zap.Logger
}

// NewExtractor creates a PDF extractor. A scratch directory is created under
// the system temp dir for pdfcpu's per-page content files.
func NewExtractor(logger *zap.Logger) *Extractor {
	tempDir := filepath.Join(os.TempDir(), "studyvault-pdf")
	_ = os.MkdirAll(tempDir, 0o755)

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{tempDir: tempDir, logger: logger}
}

// ExtractText returns the document's text in page order, pages separated by
// blank lines. Unreadable files and documents with no extractable text
// (image-only pages) fail with domain.ErrExtraction.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("read %s: %v: %w", path, err, domain.ErrExtraction)
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("parse %s: %v: %w", path, err, domain.ErrExtraction)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp(e.tempDir, "pages_")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extract content %s: %v: %w", path, err, domain.ErrExtraction)
	}

	pageTexts, err := readPageContents(outDir)
	if err != nil {
		return "", err
	}

	var pages []int
	for n := range pageTexts {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	var b strings.Builder
	for _, n := range pages {
		text := strings.TrimSpace(decodeContentText(pageTexts[n]))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	text := b.String()
	if text == "" {
		return "", fmt.Errorf("no extractable text in %s (%d pages): %w", path, pageCount, domain.ErrExtraction)
	}

	e.logger.Debug("extracted pdf text",
		zap.String("path", path),
		zap.Int("pages", pageCount),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// readPageContents loads the per-page content files pdfcpu wrote, keyed by
// page number. Both "page_N" and "Content_page_N" naming schemes appear
// across pdfcpu versions.
func readPageContents(dir string) (map[int][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}

	contents := make(map[int][]byte, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var pageNum int
		name := entry.Name()
		if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(name, "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		contents[pageNum] = data
	}
	return contents, nil
}

// decodeContentText pulls the text-showing operators (Tj, TJ, ', ") out of a
// raw PDF content stream. Literal strings are unescaped; a text-positioning
// operator (Td, TD, T*) between strings becomes a line break, any other gap
// becomes a space.
func decodeContentText(content []byte) string {
	var b strings.Builder
	var pendingBreak byte // 0 none, ' ' space, '\n' newline

	flush := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			switch pendingBreak {
			case '\n':
				b.WriteByte('\n')
			default:
				b.WriteByte(' ')
			}
		}
		pendingBreak = 0
		b.WriteString(s)
	}

	i := 0
	for i < len(content) {
		switch content[i] {
		case '(':
			s, next := parseLiteralString(content, i)
			flush(s)
			i = next
		case 'T':
			if i+1 < len(content) {
				switch content[i+1] {
				case 'd', 'D', '*':
					pendingBreak = '\n'
				}
			}
			i++
		case '%':
			// comment runs to end of line
			for i < len(content) && content[i] != '\n' {
				i++
			}
		default:
			i++
		}
	}
	return b.String()
}

// parseLiteralString reads a parenthesized PDF string starting at open and
// returns the decoded text plus the index just past the closing paren.
// Handles nested parens, backslash escapes, and octal codes.
func parseLiteralString(content []byte, open int) (string, int) {
	var b strings.Builder
	depth := 1
	i := open + 1

	for i < len(content) && depth > 0 {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= len(content) {
				i++
				continue
			}
			i++
			switch content[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// ignore
			case '(', ')', '\\':
				b.WriteByte(content[i])
			default:
				if content[i] >= '0' && content[i] <= '7' {
					code := 0
					for n := 0; n < 3 && i < len(content) && content[i] >= '0' && content[i] <= '7'; n++ {
						code = code*8 + int(content[i]-'0')
						i++
					}
					i--
					if code > 0 && code < 128 {
						b.WriteByte(byte(code))
					}
				}
			}
			i++
		case '(':
			depth++
			b.WriteByte(c)
			i++
		case ')':
			depth--
			if depth > 0 {
				b.WriteByte(c)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

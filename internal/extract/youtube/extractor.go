// Package youtube fetches video captions and flattens them into plain
// transcript text. Languages are tried in a fixed configured order; the
// first track that exists wins.
package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// DefaultBaseURL is the public caption track endpoint.
const DefaultBaseURL = "https://video.google.com/timedtext"

// DefaultLanguages is the preference order used when none is configured:
// primary language, regional variants, then common fallbacks.
var DefaultLanguages = []string{"en", "en-US", "en-GB", "es", "fr", "de"}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtube\.com/watch\?.*?[?&]v=([A-Za-z0-9_-]{6,})`),
}

// ParseVideoID extracts the video identifier from any accepted URL shape:
// canonical watch URL, short URL, or embed URL.
func ParseVideoID(rawURL string) (string, error) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no video id in %q: %w", rawURL, domain.ErrExtraction)
}

// Config holds transcript extractor settings.
type Config struct {
	// Languages overrides the language preference order.
	Languages []string
	// BaseURL overrides the caption endpoint (tests).
	BaseURL string
	// Client overrides the HTTP client.
	Client *http.Client
	Logger *zap.Logger
}

// Extractor fetches transcripts with language fallback.
type Extractor struct {
	client    *http.Client
	baseURL   string
	languages []string
	logger    *zap.Logger
}

// NewExtractor creates a transcript extractor.
func NewExtractor(cfg Config) *Extractor {
	e := &Extractor{
		client:    cfg.Client,
		baseURL:   cfg.BaseURL,
		languages: cfg.Languages,
		logger:    cfg.Logger,
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.baseURL == "" {
		e.baseURL = DefaultBaseURL
	}
	if len(e.languages) == 0 {
		e.languages = DefaultLanguages
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// ExtractText fetches the first available caption track in preference order
// and returns the joined segment text with timestamps stripped and
// whitespace collapsed. When every language in the list is exhausted the
// call fails with domain.ErrNoTranscript.
func (e *Extractor) ExtractText(ctx context.Context, videoURL string) (string, error) {
	videoID, err := ParseVideoID(videoURL)
	if err != nil {
		return "", err
	}

	for _, lang := range e.languages {
		text, found, err := e.fetchTrack(ctx, videoID, lang)
		if err != nil {
			// Context cancellation ends the whole attempt chain; transport
			// errors just fail this language.
			if ctx.Err() != nil {
				return "", err
			}
			e.logger.Warn("caption track fetch failed",
				zap.String("video_id", videoID),
				zap.String("lang", lang),
				zap.Error(err),
			)
			continue
		}
		if found {
			e.logger.Debug("fetched transcript",
				zap.String("video_id", videoID),
				zap.String("lang", lang),
				zap.Int("chars", len(text)),
			)
			return text, nil
		}
	}

	return "", fmt.Errorf("video %s, languages %v: %w", videoID, e.languages, domain.ErrNoTranscript)
}

// timedtext XML: <transcript><text start="0.0" dur="1.2">...</text>...</transcript>
type transcriptXML struct {
	Segments []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTrack requests one caption track. found=false means the track does
// not exist for this language (empty body or 404), which is not an error.
func (e *Extractor) fetchTrack(ctx context.Context, videoID, lang string) (string, bool, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", false, fmt.Errorf("new request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("caption endpoint: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", false, nil
	}

	var tr transcriptXML
	if err := xml.Unmarshal(body, &tr); err != nil {
		return "", false, fmt.Errorf("parse track: %w", err)
	}
	if len(tr.Segments) == 0 {
		return "", false, nil
	}

	parts := make([]string, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		s := html.UnescapeString(seg.Body)
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	joined := collapseWhitespace(strings.Join(parts, " "))
	if joined == "" {
		return "", false, nil
	}
	return joined, true, nil
}

// collapseWhitespace folds all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

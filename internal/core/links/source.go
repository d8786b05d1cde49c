// Package links turns a URL into analysable texts: YouTube comments via the Data
// API, feed items, server-rendered comments and reviews, or article paragraphs.
package links

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

// Content source kinds.
const (
	SourceYouTube  = "youtube"
	SourceFeed     = "feed"
	SourceComments = "comments"
	SourceArticle  = "article"
)

const (
	defaultMaxTexts = 100
	logFieldURL     = "url"
	logFieldSource  = "source"
)

// Content is what a page yields for analysis.
type Content struct {
	Title       string
	Description string
	Source      string
	PublishedAt time.Time
	Texts       []string
}

// PageFetcher downloads a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// VideoSource reads YouTube videos.
type VideoSource interface {
	Video(ctx context.Context, videoID string, limit int) (*Content, error)
}

// Fetcher picks the extraction strategy for a URL.
type Fetcher struct {
	pages    PageFetcher
	videos   VideoSource
	maxTexts int
	logger   *zerolog.Logger
}

// NewFetcher creates a fetcher. A nil videos source makes YouTube URLs unavailable.
func NewFetcher(pages PageFetcher, videos VideoSource, maxTexts int, logger *zerolog.Logger) *Fetcher {
	if maxTexts <= 0 {
		maxTexts = defaultMaxTexts
	}

	return &Fetcher{
		pages:    pages,
		videos:   videos,
		maxTexts: maxTexts,
		logger:   logger,
	}
}

// ValidateURL accepts absolute http(s) URLs.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidURL, rawURL)
	}

	return u, nil
}

// Fetch returns the analysable content of rawURL. A page without texts is not an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	if IsYouTubeHost(u) {
		content, err := f.fetchYouTube(ctx, u)
		f.record(SourceYouTube, err)

		return content, err
	}

	page, err := f.pages.Fetch(ctx, u.String())
	if err != nil {
		f.record("page", err)
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}

	content := f.extract(page, u)
	f.record(content.Source, nil)

	f.logger.Info().
		Str(logFieldURL, u.Redacted()).
		Str(logFieldSource, content.Source).
		Int("texts", len(content.Texts)).
		Msg("content extracted")

	return content, nil
}

func (f *Fetcher) fetchYouTube(ctx context.Context, u *url.URL) (*Content, error) {
	if f.videos == nil {
		return nil, fmt.Errorf("%w: YouTube API key not configured", apperrors.ErrCommentsUnavailable)
	}

	id, ok := YouTubeVideoID(u)
	if !ok {
		return nil, fmt.Errorf("%w: not a video URL", apperrors.ErrInvalidURL)
	}

	return f.videos.Video(ctx, id, f.maxTexts)
}

func (f *Fetcher) extract(page *Page, u *url.URL) *Content {
	if looksLikeFeed(page.ContentType, page.Body) {
		if feed, ok := ParseFeed(page.Body, f.maxTexts); ok {
			return &Content{
				Title:       feed.Title,
				Description: feed.Description,
				Source:      SourceFeed,
				PublishedAt: feed.Updated,
				Texts:       feed.Texts,
			}
		}
	}

	article := ExtractWebContent(page.Body, page.URL)
	content := &Content{
		Title:       article.Title,
		Description: article.Description,
		PublishedAt: article.PublishedAt,
	}

	if comments := ExtractComments(page.Body, u.Hostname(), f.maxTexts); len(comments) > 0 {
		content.Source = SourceComments
		content.Texts = comments

		return content
	}

	content.Source = SourceArticle
	content.Texts = article.Paragraphs

	if len(content.Texts) > f.maxTexts {
		content.Texts = content.Texts[:f.maxTexts]
	}

	return content
}

func (f *Fetcher) record(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	observability.ContentFetches.WithLabelValues(source, status).Inc()
}

package links

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

const (
	// DefaultYouTubeAPIURL is the YouTube Data API v3 base URL.
	DefaultYouTubeAPIURL = "https://www.googleapis.com/youtube/v3"

	youtubePageSize    = 100
	youtubeMaxPages    = 5
	youtubeErrorBodyKB = 4
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// YouTubeClient reads video metadata and top-level comments from the YouTube Data API.
type YouTubeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewYouTubeClient creates a client. An empty baseURL uses the public API.
func NewYouTubeClient(baseURL, apiKey string, timeout time.Duration) *YouTubeClient {
	if baseURL == "" {
		baseURL = DefaultYouTubeAPIURL
	}

	if timeout <= 0 {
		timeout = defaultFetchTimeoutSeconds * time.Second
	}

	return &YouTubeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type youtubeVideosResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextOriginal string `json:"textOriginal"`
					TextDisplay  string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// Video fetches the title, description and up to limit comments of a video.
func (c *YouTubeClient) Video(ctx context.Context, videoID string, limit int) (*Content, error) {
	var videos youtubeVideosResponse
	if err := c.get(ctx, "videos", url.Values{"part": {"snippet"}, "id": {videoID}}, &videos); err != nil {
		return nil, err
	}

	if len(videos.Items) == 0 {
		return nil, fmt.Errorf("%w: video %s not found", apperrors.ErrCommentsUnavailable, videoID)
	}

	content := &Content{
		Title:       videos.Items[0].Snippet.Title,
		Description: videos.Items[0].Snippet.Description,
		Source:      SourceYouTube,
	}

	pageToken := ""

	for page := 0; page < youtubeMaxPages && len(content.Texts) < limit; page++ {
		params := url.Values{
			"part":       {"snippet"},
			"videoId":    {videoID},
			"maxResults": {strconv.Itoa(youtubePageSize)},
			"order":      {"relevance"},
			"textFormat": {"plainText"},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var threads youtubeThreadsResponse
		if err := c.get(ctx, "commentThreads", params, &threads); err != nil {
			return nil, err
		}

		for _, item := range threads.Items {
			s := item.Snippet.TopLevelComment.Snippet
			text := strings.TrimSpace(coalesce(s.TextOriginal, s.TextDisplay))

			if utf8.RuneCountInString(text) >= minCommentRunes && len(content.Texts) < limit {
				content.Texts = append(content.Texts, text)
			}
		}

		if threads.NextPageToken == "" {
			break
		}

		pageToken = threads.NextPageToken
	}

	return content, nil
}

func (c *YouTubeClient) get(ctx context.Context, resource string, params url.Values, dst any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, youtubeErrorBodyKB*1024))
		return fmt.Errorf("%w: youtube %s returned %d: %s", apperrors.ErrCommentsUnavailable, resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode youtube %s: %w", resource, err)
	}

	return nil
}

// YouTubeVideoID extracts the video id from watch, short-link, shorts and embed URLs.
func YouTubeVideoID(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string

	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}

		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live") {
			id = parts[1]
		}
	default:
		return "", false
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}

	return id, true
}

// IsYouTubeHost reports whether u points at YouTube.
func IsYouTubeHost(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())

	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

package links

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta name="description" content="Plain description">
  <meta property="og:title" content="Phone Review">
  <meta property="og:description" content="Our verdict on the new phone">
  <meta name="author" content="Jane Doe">
  <meta property="article:published_time" content="2024-03-15T10:00:00Z">
</head>
<body>
  <nav>Home | About</nav>
  <article>
    <h1>Phone Review</h1>
    <p>The battery life on this phone is outstanding and easily lasts two days of heavy use.</p>
    <p>The camera struggles in low light, and night shots come out noisy and soft.</p>
    <p>Overall it is a solid device for the price, with a bright and sharp display.</p>
    <p>Short.</p>
  </article>
</body>
</html>`

func TestExtractWebContent(t *testing.T) {
	got := ExtractWebContent([]byte(articleHTML), "https://example.com/review")
	require.NotNil(t, got)

	assert.Equal(t, "Phone Review", got.Title)
	assert.Equal(t, "Our verdict on the new phone", got.Description)
	assert.Equal(t, "Jane Doe", got.Author)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), got.PublishedAt.UTC())

	joined := strings.Join(got.Paragraphs, "\n")
	assert.Contains(t, joined, "battery life on this phone is outstanding")
	assert.Contains(t, joined, "camera struggles in low light")

	for _, p := range got.Paragraphs {
		assert.GreaterOrEqual(t, len([]rune(p)), minParagraphRunes)
	}
}

func TestExtractMetaTags(t *testing.T) {
	meta := extractMetaTags([]byte(articleHTML))

	assert.Equal(t, "Fallback Title", meta.Title)
	assert.Equal(t, "Plain description", meta.Description)
	assert.Equal(t, "Phone Review", meta.OGTitle)
	assert.Equal(t, "Our verdict on the new phone", meta.OGDescription)
	assert.Equal(t, "2024-03-15T10:00:00Z", meta.PublishedTime)
}

func TestSplitParagraphs(t *testing.T) {
	text := "  first paragraph is long enough to keep  \n\nshort\n   second   paragraph   also long enough  "

	assert.Equal(t, []string{
		"first paragraph is long enough to keep",
		"second paragraph also long enough",
	}, splitParagraphs(text))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "rfc3339", input: "2024-01-02T03:04:05Z"},
		{name: "human", input: "March 5, 2024"},
		{name: "empty", input: "", zero: true},
		{name: "garbage", input: "not a date", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseDate(tt.input).IsZero())
		})
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", coalesce("", "b", "c"))
	assert.Equal(t, "", coalesce("", ""))
}

const reviewsHTML = `<html><body>
<div class="reviews">
  <div itemprop="reviewBody">Absolutely love this blender, it crushes ice in seconds.</div>
  <div itemprop="reviewBody">Broke after two weeks, very disappointed.</div>
  <div itemprop="reviewBody">Broke after two weeks, very disappointed.</div>
  <div itemprop="reviewBody">ok</div>
</div>
<script>var x = "<div itemprop='reviewBody'>not a review</div>";</script>
</body></html>`

func TestExtractComments(t *testing.T) {
	got := ExtractComments([]byte(reviewsHTML), "shop.example.com", 10)

	assert.Equal(t, []string{
		"Absolutely love this blender, it crushes ice in seconds.",
		"Broke after two weeks, very disappointed.",
	}, got)
}

func TestExtractComments_HostSpecificSelector(t *testing.T) {
	page := `<html><body>
<div class="review-text-content"><span>Great sound and battery life.</span></div>
<div class="review-text-content"><span>Stopped charging after a month.</span></div>
</body></html>`

	assert.Len(t, ExtractComments([]byte(page), "www.amazon.com", 10), 2)
	assert.Empty(t, ExtractComments([]byte(page), "example.com", 10))
}

func TestExtractComments_Limit(t *testing.T) {
	var b strings.Builder

	b.WriteString("<html><body>")

	for i := 0; i < 20; i++ {
		b.WriteString(`<p class="comment-body">comment number `)
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString("</p>")
	}

	b.WriteString("</body></html>")

	assert.Len(t, ExtractComments([]byte(b.String()), "example.com", 5), 5)
}

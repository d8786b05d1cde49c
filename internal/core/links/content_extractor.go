package links

import (
	"bytes"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const minParagraphRunes = 20

// WebContent is the readable part of an article page.
type WebContent struct {
	Title       string
	Description string
	Author      string
	PublishedAt time.Time
	Paragraphs  []string
}

// ExtractWebContent runs readability over the page and splits the main text into
// paragraphs. Pages readability cannot parse still yield their meta tags.
func ExtractWebContent(htmlBytes []byte, rawURL string) *WebContent {
	u, _ := url.Parse(rawURL) //nolint:errcheck // URL was already validated

	meta := extractMetaTags(htmlBytes)

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), u)
	if err != nil {
		return &WebContent{
			Title:       coalesce(meta.OGTitle, meta.Title),
			Description: coalesce(meta.OGDescription, meta.Description),
			Author:      meta.Author,
			PublishedAt: parseDate(meta.PublishedTime),
		}
	}

	published := parseDate(meta.PublishedTime)
	if published.IsZero() && article.PublishedTime != nil {
		published = *article.PublishedTime
	}

	return &WebContent{
		Title:       coalesce(meta.OGTitle, article.Title, meta.Title),
		Description: coalesce(meta.OGDescription, meta.Description, article.Excerpt),
		Author:      coalesce(article.Byline, meta.Author),
		PublishedAt: published,
		Paragraphs:  splitParagraphs(article.TextContent),
	}
}

func splitParagraphs(text string) []string {
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if utf8.RuneCountInString(line) < minParagraphRunes {
			continue
		}

		out = append(out, line)
	}

	return out
}

// MetaTags holds the page metadata used for titles and descriptions.
type MetaTags struct {
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	Author        string
	PublishedTime string
}

func extractMetaTags(htmlBytes []byte) MetaTags {
	var meta MetaTags

	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return meta
	}

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			processMetaElement(n, &meta)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return meta
}

func processMetaElement(n *html.Node, meta *MetaTags) {
	switch n.Data {
	case "title":
		if meta.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			meta.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	case "meta":
		applyMetaTag(n, meta)
	}
}

func applyMetaTag(n *html.Node, meta *MetaTags) {
	name, content := getMetaAttrs(n)

	switch strings.ToLower(name) {
	case "description":
		meta.Description = content
	case "author":
		meta.Author = content
	case "og:title":
		meta.OGTitle = content
	case "og:description":
		meta.OGDescription = content
	case "article:published_time":
		meta.PublishedTime = content
	}
}

func getMetaAttrs(n *html.Node) (string, string) {
	var name, content string

	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name", "property":
			name = attr.Val
		case "content":
			content = attr.Val
		}
	}

	return name, content
}

func coalesce(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}

	return ""
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}

	return t
}

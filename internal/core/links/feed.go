package links

import (
	"bytes"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FeedContent is an RSS, Atom or JSON feed reduced to analysable texts.
type FeedContent struct {
	Title       string
	Description string
	Updated     time.Time
	Texts       []string
}

// ParseFeed parses body as a feed. ok is false when body is not a feed or has no items.
func ParseFeed(body []byte, limit int) (*FeedContent, bool) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil || len(feed.Items) == 0 {
		return nil, false
	}

	out := &FeedContent{
		Title:       feed.Title,
		Description: feed.Description,
	}

	if feed.UpdatedParsed != nil {
		out.Updated = *feed.UpdatedParsed
	}

	for _, item := range feed.Items {
		if limit > 0 && len(out.Texts) >= limit {
			break
		}

		text := itemText(item)
		if text == "" {
			continue
		}

		out.Texts = append(out.Texts, text)

		if item.PublishedParsed != nil && item.PublishedParsed.After(out.Updated) {
			out.Updated = *item.PublishedParsed
		}
	}

	return out, true
}

func itemText(item *gofeed.Item) string {
	body := coalesce(item.Description, item.Content)
	parts := make([]string, 0, 2)

	if t := strings.TrimSpace(item.Title); t != "" {
		parts = append(parts, t)
	}

	if b := stripTags(body); b != "" {
		parts = append(parts, b)
	}

	return strings.Join(parts, ". ")
}

// stripTags returns the text content of an HTML fragment.
func stripTags(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.Join(strings.Fields(fragment), " ")
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return ""
	}

	var b strings.Builder

	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range nodes {
		walk(n)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func looksLikeFeed(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "rss") || strings.Contains(ct, "atom") || strings.Contains(ct, "feed+json") {
		return true
	}

	head := bytes.TrimSpace(body)
	if len(head) > 512 {
		head = head[:512]
	}

	return bytes.Contains(head, []byte("<rss")) || bytes.Contains(head, []byte("<feed"))
}

package links

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const minCommentRunes = 6

// commentSelectors are tried per host; generic selectors apply everywhere.
var commentSelectors = []struct {
	host     string
	selector string
}{
	{host: "amazon.", selector: ".review-text-content span, [data-hook=review-body] span"},
	{host: "flipkart.", selector: "div._27M-vq, div.ZmyHeo"},
	{host: "youtube.com", selector: "ytd-comment-thread-renderer #content-text, ytd-comment-view-model #content-text"},
	{host: "", selector: "[itemprop=reviewBody], .review-body, .review-text, .comment-body, .comment-content, .comment p"},
}

// ExtractComments collects user comments and reviews from server-rendered HTML.
// Results are de-duplicated in document order.
func ExtractComments(htmlBytes []byte, host string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil
	}

	doc.Find("script,noscript,style").Remove()

	host = strings.ToLower(host)
	seen := make(map[string]struct{})

	var out []string

	for _, cs := range commentSelectors {
		if cs.host != "" && !strings.Contains(host, cs.host) {
			continue
		}

		doc.Find(cs.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if utf8.RuneCountInString(text) < minCommentRunes {
				return true
			}

			if _, dup := seen[text]; dup {
				return true
			}

			seen[text] = struct{}{}
			out = append(out, text)

			return limit <= 0 || len(out) < limit
		})

		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out
}

package session

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetLen = 512

// responseSnippet summarises an error body. HTML error pages (proxies, CDNs)
// are reduced to their <title> or first heading.
func responseSnippet(body []byte, contentType string) string {
	if looksLikeHTML(body, contentType) {
		if title := htmlTitle(body); title != "" {
			return truncate(title)
		}
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	return truncate(s)
}

func looksLikeHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"title", "h1"} {
		if text := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string) string {
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}

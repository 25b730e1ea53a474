package parser

import (
	"bytes"
	"net/url"

	"golang.org/x/net/html"
)

// ParseLinks tokenizes content and returns the absolute targets of every
// <a href>, in document order, without duplicates.
func ParseLinks(baseURL string, content []byte) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	z := html.NewTokenizer(bytes.NewReader(content))
	seen := make(map[string]struct{})
	links := make([]string, 0)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		t := z.Token()
		if t.Data != "a" {
			continue
		}
		href := absoluteHref(t, base)
		if href == "" {
			continue
		}
		if _, dup := seen[href]; dup {
			continue
		}
		seen[href] = struct{}{}
		links = append(links, href)
	}
	return links
}

func absoluteHref(tok html.Token, base *url.URL) string {
	for _, a := range tok.Attr {
		if a.Key == "href" {
			return ResolveLink(base, a.Val)
		}
	}
	return ""
}

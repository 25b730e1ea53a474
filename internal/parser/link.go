// internal/parser/link.go
package parser

import (
	"net/url"
	"strings"
)

// ResolveLink converts a raw href into an absolute http(s) URL without a
// fragment. It returns "" for links that cannot be crawled.
func ResolveLink(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	// mailto:, javascript:, tel:, data: and friends all land here
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	abs.RawFragment = ""
	if abs.Path == "" {
		abs.Path = "/"
	}
	return abs.String()
}

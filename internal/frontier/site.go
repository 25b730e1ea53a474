package frontier

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var hasScheme = regexp.MustCompile(`(?i)^https?://`)

// Site is the immutable per-run context derived from the start domain.
type Site struct {
	// Origin is scheme://host[:port] with the host already normalised.
	Origin string
	// Host is the normalised host (with non-default port) every crawled
	// URL must share.
	Host string
	// Start is the canonical form of what the user typed.
	Start string
	// Home is Origin + "/", the only page that is ever re-polled.
	Home string

	base *url.URL
}

// NewSite derives the site context from a bare domain or URL. A missing
// scheme defaults to https.
func NewSite(domain string) (Site, error) {
	s := strings.TrimSpace(domain)
	if s == "" {
		return Site{}, ErrEmptyHost
	}
	if !hasScheme.MatchString(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Site{}, fmt.Errorf("parse %q: %w", domain, err)
	}
	if u.Hostname() == "" {
		return Site{}, ErrEmptyHost
	}

	base := &url.URL{Scheme: strings.ToLower(u.Scheme), Host: hostKey(u)}
	site := Site{
		Origin: base.String(),
		Host:   base.Host,
		base:   base,
	}
	if site.Start, err = canonicalize(s, nil); err != nil {
		return Site{}, err
	}
	if site.Home, err = canonicalize("/", base); err != nil {
		return Site{}, err
	}
	return site, nil
}

// Canonicalize resolves raw against base (the site origin when base is
// empty) and normalises it: lower-cased host without "www.", no fragment,
// no tracking parameters.
func (s Site) Canonicalize(raw, base string) (string, error) {
	b := s.base
	if base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base %q: %w", base, err)
		}
		b = parsed
	}
	return canonicalize(raw, b)
}

// IsEligible reports whether u belongs to the site and is not a static asset.
func (s Site) IsEligible(u string) bool {
	if IsBlockedExt(u) {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	return hostKey(parsed) == s.Host
}

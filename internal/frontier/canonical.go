// internal/frontier/canonical.go
package frontier

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrUnsupportedScheme is returned for anything that is not http(s).
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrEmptyHost is returned when a URL resolves without a host.
	ErrEmptyHost = errors.New("URL has no host")
)

// trackingParams never change page content, so they are dropped before
// de-duplication.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "fbclid", "yclid", "mc_cid", "mc_eid", "ref", "ref_src",
}

// blockedExt matches static assets and documents that are never crawled.
var blockedExt = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|webp|svg|gif|ico|css|js|mjs|woff2?|ttf|otf|pdf|zip|rar|7z|tar|gz|mp4|webm|avi|mov|mp3|m4a)(?:\?|#|$)`)

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// NormalizeHost lower-cases a host name, converts IDNs to their ASCII form
// and strips a leading "www.".
func NormalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if ascii, err := idna.Lookup.ToASCII(h); err == nil && ascii != "" {
		h = ascii
	}
	return strings.TrimPrefix(h, "www.")
}

// hostKey is the normalised host plus any non-default port. IPv6
// literals keep their brackets.
func hostKey(u *url.URL) string {
	host := NormalizeHost(u.Hostname())
	if port := u.Port(); port != "" && port != defaultPorts[u.Scheme] {
		return net.JoinHostPort(host, port)
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

// stripTracking removes tracking parameters from a raw query. Every other
// segment is kept byte for byte and in its original order.
func stripTracking(rawQuery string) string {
	segs := strings.Split(rawQuery, "&")
	kept := segs[:0]
	for _, seg := range segs {
		if !isTrackingParam(seg) {
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, "&")
}

func isTrackingParam(seg string) bool {
	key, _, _ := strings.Cut(seg, "=")
	if k, err := url.QueryUnescape(key); err == nil {
		key = k
	}
	for _, t := range trackingParams {
		if key == t {
			return true
		}
	}
	return false
}

// IsBlockedExt reports whether the URL points at a static asset.
func IsBlockedExt(raw string) bool {
	return blockedExt.MatchString(raw)
}

// canonicalize resolves raw against base and normalises the result.
func canonicalize(raw string, base *url.URL) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}

	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", ErrEmptyHost
	}

	u.Host = hostKey(u)
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	u.RawQuery = stripTracking(u.RawQuery)
	u.ForceQuery = false

	return u.String(), nil
}

package transport

import (
	"fmt"
	"net/url"
)

// Mode selects how a relay embeds the target URL.
type Mode string

const (
	// ModeDirect sends the request to the target itself.
	ModeDirect Mode = "direct"
	// ModeQuery appends the query-escaped target to the prefix.
	ModeQuery Mode = "query"
	// ModePath appends the raw target to the prefix.
	ModePath Mode = "path"
)

// Relay wraps a target URL into the URL actually requested.
type Relay struct {
	Name string
	Wrap func(target string) string
}

// Direct is the identity relay.
func Direct() Relay {
	return Relay{Name: "direct", Wrap: func(u string) string { return u }}
}

// QueryRelay builds relays like https://corsproxy.io/?<escaped target>.
func QueryRelay(name, prefix string) Relay {
	return Relay{Name: name, Wrap: func(u string) string { return prefix + url.QueryEscape(u) }}
}

// PathRelay builds relays like https://cors.isomorphic-git.org/<target>.
func PathRelay(name, prefix string) Relay {
	return Relay{Name: name, Wrap: func(u string) string { return prefix + u }}
}

// NewRelay builds a relay from its configured form.
func NewRelay(name string, mode Mode, prefix string) (Relay, error) {
	switch mode {
	case ModeDirect:
		r := Direct()
		if name != "" {
			r.Name = name
		}
		return r, nil
	case ModeQuery, ModePath:
		if name == "" || prefix == "" {
			return Relay{}, fmt.Errorf("relay %q: name and prefix are required for mode %q", name, mode)
		}
		if _, err := url.Parse(prefix); err != nil {
			return Relay{}, fmt.Errorf("relay %q: bad prefix: %w", name, err)
		}
		if mode == ModeQuery {
			return QueryRelay(name, prefix), nil
		}
		return PathRelay(name, prefix), nil
	default:
		return Relay{}, fmt.Errorf("relay %q: unknown mode %q", name, mode)
	}
}

// DefaultRelays is the public relay chain, tried in this order.
func DefaultRelays() []Relay {
	return []Relay{
		Direct(),
		QueryRelay("allorigins", "https://api.allorigins.win/raw?url="),
		PathRelay("thingproxy", "https://thingproxy.freeboard.io/fetch/"),
		PathRelay("isomorphic", "https://cors.isomorphic-git.org/"),
		QueryRelay("corsproxy", "https://corsproxy.io/?"),
	}
}

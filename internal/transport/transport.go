// Package transport fetches page HTML over an unreliable chain of relays.
//
// Every fetch walks a candidate × relay matrix: the target (and, for https
// targets, its http twin), each wrapped by every relay in priority order.
// The first attempt that returns a 2xx status with a non-trivial body wins.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sitecrawl/internal/metrics"
)

const (
	// DefaultTimeout bounds a single relay attempt.
	DefaultTimeout = 15 * time.Second
	// MinBodySize is the smallest body accepted; relays tend to answer
	// failures with empty or placeholder pages.
	MinBodySize = 16
	// DefaultMaxBodySize caps how much of a response is read.
	DefaultMaxBodySize = 5 * 1024 * 1024
	// CacheBustParam is set on every candidate URL.
	CacheBustParam = "__t"

	acceptHeader = "text/html,application/xml;q=0.9,*/*;q=0.8"
)

var (
	// ErrStatus is wrapped when a relay answers with a non-2xx status.
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrEmptyBody is wrapped when a body is below MinBodySize.
	ErrEmptyBody = errors.New("empty response body")
)

// FetchError means every candidate × relay combination failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: all %d attempts failed: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transport performs relay-chained GET requests.
type Transport struct {
	client      *http.Client
	relays      []Relay
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Transport.
type Option func(*Transport)

func WithClient(c *http.Client) Option {
	return func(t *Transport) { t.client = c }
}

// WithRelays replaces the relay chain. An empty chain means direct only.
func WithRelays(relays []Relay) Option {
	return func(t *Transport) { t.relays = relays }
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) { t.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(t *Transport) { t.userAgent = ua }
}

func WithMaxBodySize(n int64) Option {
	return func(t *Transport) { t.maxBodySize = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithClock overrides the time source used for cache busting.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// New returns a Transport using the default public relay chain.
func New(opts ...Option) *Transport {
	t := &Transport{
		client:      &http.Client{},
		relays:      DefaultRelays(),
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.relays) == 0 {
		t.relays = []Relay{Direct()}
	}
	if t.maxBodySize <= 0 {
		t.maxBodySize = DefaultMaxBodySize
	}
	return t
}

// Relays returns the chain in priority order.
func (t *Transport) Relays() []Relay {
	out := make([]Relay, len(t.relays))
	copy(out, t.relays)
	return out
}

// Fetch returns the HTML of target. Each attempt is bounded by timeout (the
// transport default when zero) and registered in handles while outstanding.
// If ctx is cancelled, Fetch returns ctx.Err() rather than a FetchError.
func (t *Transport) Fetch(ctx context.Context, target string, timeout time.Duration, handles *Inflight) (string, error) {
	if timeout <= 0 {
		timeout = t.timeout
	}

	attempts := 0
	var lastErr error
	for _, candidate := range Candidates(target, t.now()) {
		for _, r := range t.relays {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			attempts++

			body, err := t.attempt(ctx, r.Wrap(candidate), timeout, handles)
			if err == nil {
				metrics.RelayAttempts.WithLabelValues(r.Name, "ok").Inc()
				metrics.PagesFetched.Inc()
				metrics.BytesFetched.Add(float64(len(body)))
				return body, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			metrics.RelayAttempts.WithLabelValues(r.Name, "error").Inc()
			t.logger.Debug("relay attempt failed",
				zap.String("relay", r.Name),
				zap.String("url", candidate),
				zap.Error(err))
			lastErr = fmt.Errorf("%s: %w", r.Name, err)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no candidates")
	}
	return "", &FetchError{URL: target, Attempts: attempts, Err: lastErr}
}

func (t *Transport) attempt(ctx context.Context, u string, timeout time.Duration, handles *Inflight) (string, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	release := handles.Track(cancel)
	defer func() {
		release()
		cancel()
	}()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Cache-Control", "no-store")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	metrics.InflightRequests.Inc()
	defer metrics.InflightRequests.Dec()

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize))
	if err != nil {
		return "", err
	}
	if len(b) < MinBodySize {
		return "", fmt.Errorf("%w: %d bytes", ErrEmptyBody, len(b))
	}
	return string(b), nil
}

// Candidates lists the URLs tried for target: the target itself and, for
// https, its http equivalent, each with a cache-busting parameter.
func Candidates(target string, now time.Time) []string {
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	out := []string{cacheBust(target, stamp)}
	if rest, ok := strings.CutPrefix(target, "https://"); ok {
		out = append(out, cacheBust("http://"+rest, stamp))
	}
	return out
}

func cacheBust(raw, stamp string) string {
	u, err := url.Parse(raw)
	if err != nil {
		sep := "?"
		if strings.Contains(raw, "?") {
			sep = "&"
		}
		return raw + sep + CacheBustParam + "=" + stamp
	}
	param := CacheBustParam + "=" + url.QueryEscape(stamp)
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	u.ForceQuery = false
	return u.String()
}

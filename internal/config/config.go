// Package config holds the settings of a crawl and the rules for filling
// them from defaults, the YAML config file, the environment and flags.
package config

import (
	"fmt"
	"time"

	"sitecrawl/internal/crawler"
	"sitecrawl/internal/transport"
)

// Defaults.
const (
	DefaultTimeout      = transport.DefaultTimeout
	DefaultConcurrency  = 4
	DefaultPageLimit    = 5000
	DefaultMaxDepth     = crawler.ExpandDepth
	DefaultMaxBodySize  = transport.DefaultMaxBodySize
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultUserAgent    = "sitecrawl/1.0 (+SEO audit)"
	DefaultMetricsAddr  = ":2112"
	DefaultMongoDB      = "sitecrawl"
)

// Environment variables read by ApplyEnv.
const (
	EnvMongoURI      = "MONGODB_URI"
	EnvMongoDatabase = "MONGODB_DATABASE"
)

// Config is everything the crawl command needs. It is flat on purpose;
// each field maps to one flag.
type Config struct {
	Domain string

	Timeout     time.Duration
	Concurrency int
	PageLimit   int
	MaxDepth    int
	MaxBodySize int64
	UserAgent   string
	DetectBody  bool

	// Retries > 0 tries a failed page again, waiting RetryBackoff×n.
	Retries      int
	RetryBackoff time.Duration

	// Once stops the crawl as soon as every planned page is done instead
	// of re-polling the home page until interrupted.
	Once bool

	Verbose bool
	JSONLog bool

	JSONReport     bool
	MarkdownReport bool
	ReportFile     string

	// MetricsAddr is where /metrics is served; empty disables it.
	MetricsAddr string

	ConfigFilePath string
	// Relays is the chain from the config file; nil means the built-in one.
	Relays []RelaySpec

	MongoURI      string
	MongoDatabase string
}

func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		Concurrency:   DefaultConcurrency,
		PageLimit:     DefaultPageLimit,
		MaxDepth:      DefaultMaxDepth,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		RetryBackoff:  DefaultRetryBackoff,
		MetricsAddr:   DefaultMetricsAddr,
		MongoDatabase: DefaultMongoDB,
	}
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	switch {
	case c.Domain == "":
		return ErrNoDomain
	case c.Timeout <= 0:
		return ErrInvalidTimeout
	case c.PageLimit < 1:
		return ErrInvalidPageLimit
	case c.MaxBodySize < 0:
		return ErrInvalidMaxBodySize
	case c.Retries < 0:
		return ErrInvalidRetries
	case c.JSONReport && c.MarkdownReport:
		return ErrConflictingReportFormats
	}
	if _, err := c.RelayChain(); err != nil {
		return err
	}
	return nil
}

// ApplyEnv fills the MongoDB settings from getenv when set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvMongoURI); v != "" {
		c.MongoURI = v
	}
	if v := getenv(EnvMongoDatabase); v != "" {
		c.MongoDatabase = v
	}
}

// RelayChain builds the transport relays in priority order.
func (c *Config) RelayChain() ([]transport.Relay, error) {
	if c.Relays == nil {
		return transport.DefaultRelays(), nil
	}
	out := make([]transport.Relay, 0, len(c.Relays))
	for i, spec := range c.Relays {
		r, err := transport.NewRelay(spec.Name, transport.Mode(spec.Mode), spec.Prefix)
		if err != nil {
			return nil, fmt.Errorf("%w #%d: %v", ErrInvalidRelay, i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// ReportFormat names the report writer selected by the flags.
func (c *Config) ReportFormat() string {
	switch {
	case c.JSONReport:
		return "json"
	case c.MarkdownReport:
		return "markdown"
	default:
		return "text"
	}
}

// CrawlOptions converts the config into engine run options.
func (c *Config) CrawlOptions() crawler.Options {
	return crawler.Options{
		MaxDepth:    c.MaxDepth,
		PageLimit:   c.PageLimit,
		Timeout:     c.Timeout,
		Concurrency: c.Concurrency,
		Retry: transport.RetryPolicy{
			Retries: c.Retries,
			Backoff: c.RetryBackoff,
		},
	}
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory, then in $HOME.
const DefaultConfigFile = ".sitecrawl.yaml"

// RelaySpec is one relay entry of the config file.
type RelaySpec struct {
	Name   string `yaml:"name"`
	Mode   string `yaml:"mode"`
	Prefix string `yaml:"prefix,omitempty"`
}

// Defaults overrides built-in defaults. Unset keys keep them.
type Defaults struct {
	Timeout      *time.Duration `yaml:"timeout"`
	Concurrency  *int           `yaml:"concurrency"`
	PageLimit    *int           `yaml:"page_limit"`
	MaxDepth     *int           `yaml:"max_depth"`
	MaxBodySize  *int64         `yaml:"max_body_size"`
	UserAgent    *string        `yaml:"user_agent"`
	DetectBody   *bool          `yaml:"detect_body"`
	Retries      *int           `yaml:"retries"`
	RetryBackoff *time.Duration `yaml:"retry_backoff"`
	MetricsAddr  *string        `yaml:"metrics_addr"`
}

// File is the YAML config file.
//
//	relays:
//	  - {name: direct, mode: direct}
//	  - {name: mine, mode: query, prefix: "https://relay.example/?url="}
//	defaults:
//	  timeout: 20s
//	  concurrency: 6
type File struct {
	Relays   []RelaySpec `yaml:"relays"`
	Defaults Defaults    `yaml:"defaults"`
}

// LoadFile parses the config file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile returns configPath if it exists, otherwise the first
// DefaultConfigFile found in the working or home directory, or "".
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Apply copies the file's settings into c. keep reports flag names the
// user set explicitly; those fields are left alone.
func (f *File) Apply(c *Config, keep func(flag string) bool) {
	if keep == nil {
		keep = func(string) bool { return false }
	}
	if f.Relays != nil {
		c.Relays = f.Relays
	}

	d := f.Defaults
	if d.Timeout != nil && !keep("timeout") {
		c.Timeout = *d.Timeout
	}
	if d.Concurrency != nil && !keep("concurrency") {
		c.Concurrency = *d.Concurrency
	}
	if d.PageLimit != nil && !keep("limit") {
		c.PageLimit = *d.PageLimit
	}
	if d.MaxDepth != nil && !keep("max-depth") {
		c.MaxDepth = *d.MaxDepth
	}
	if d.MaxBodySize != nil && !keep("max-body-size") {
		c.MaxBodySize = *d.MaxBodySize
	}
	if d.UserAgent != nil && !keep("user-agent") {
		c.UserAgent = *d.UserAgent
	}
	if d.DetectBody != nil && !keep("detect-body") {
		c.DetectBody = *d.DetectBody
	}
	if d.Retries != nil && !keep("retries") {
		c.Retries = *d.Retries
	}
	if d.RetryBackoff != nil && !keep("retry-backoff") {
		c.RetryBackoff = *d.RetryBackoff
	}
	if d.MetricsAddr != nil && !keep("metrics-addr") {
		c.MetricsAddr = *d.MetricsAddr
	}
}

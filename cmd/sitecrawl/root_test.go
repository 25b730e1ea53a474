package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecrawl/internal/config"
	"sitecrawl/internal/report"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	assert.Equal(t, "sitecrawl", cmd.Use)
	assert.NotEmpty(t, cmd.Version)

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"crawl", "relays"})

	flag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRelaysCmd(t *testing.T) {
	t.Parallel()

	t.Run("built-in chain", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  concurrency: 2\n")
		out, _, err := execute(t, "relays", "--config", cfgPath)
		require.NoError(t, err)

		for _, name := range []string{"direct", "allorigins", "thingproxy", "isomorphic", "corsproxy"} {
			assert.Contains(t, out, name)
		}
		assert.Contains(t, out, "https://api.allorigins.win/raw?url=https%3A%2F%2Fexample.com%2Fpage")
	})

	t.Run("configured chain", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, `
relays:
  - {name: direct, mode: direct}
  - {name: mine, mode: path, prefix: "https://relay.test/"}
`)
		out, _, err := execute(t, "relays", "--config", cfgPath)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[2], "https://relay.test/https://example.com/page")
		assert.NotContains(t, out, "allorigins")
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "relays", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, config.ErrConfigNotFound)
	})
}

func TestCrawlCmd_Validation(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "relays: []\n")

	_, _, err := execute(t, "crawl", "example.test", "--json", "--markdown", "--config", cfgPath)
	assert.ErrorIs(t, err, config.ErrConflictingReportFormats)

	_, _, err = execute(t, "crawl", "example.test", "--limit", "0", "--config", cfgPath)
	assert.ErrorIs(t, err, config.ErrInvalidPageLimit)

	_, _, err = execute(t, "crawl", "--config", cfgPath)
	assert.Error(t, err)
}

func TestCrawlCmd_Once(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><head><title>Home</title>
				<meta name="description" content="A description that is comfortably longer than sixty characters.">
				</head><body><h1>Home</h1><a href="/a">A</a><a href="/b">B</a><a href="https://other.test/">out</a></body></html>`)
		case "/a":
			fmt.Fprint(w, `<html><head><title>A</title></head><body><h1>A</h1></body></html>`)
		case "/b":
			fmt.Fprint(w, `<html><head><title>B</title></head><body><p>no heading here</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, "relays:\n  - {name: direct, mode: direct}\n")
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	_, stderr, err := execute(t, "crawl", srv.URL,
		"--once", "--json", "-o", reportPath,
		"--metrics-addr", "", "--config", cfgPath)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "crawl completed")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, report.StatusCompleted, rep.Status)
	assert.Equal(t, 3, rep.Completed)
	assert.Equal(t, 3, rep.Planned)
	require.Len(t, rep.Rows, 3)

	assert.Equal(t, srv.URL+"/", rep.Rows[0].URL)
	assert.Equal(t, "ok", string(rep.Rows[0].Verdict))
	assert.Equal(t, srv.URL+"/a", rep.Rows[1].URL)
	assert.Equal(t, "bad", string(rep.Rows[1].Verdict))

	kinds := []string{}
	for _, is := range rep.Rows[2].Issues {
		kinds = append(kinds, string(is.Kind))
	}
	assert.Contains(t, kinds, "h1-missing")
	assert.Contains(t, kinds, "desc-missing")
}

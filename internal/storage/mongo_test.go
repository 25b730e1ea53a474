package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecrawl/internal/audit"
	"sitecrawl/internal/crawler"
	"sitecrawl/internal/parser"
)

func TestStore_NoopWithoutURI(t *testing.T) {
	t.Parallel()

	s, err := New(context.Background(), "", "", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	require.NoError(t, s.Reset(context.Background(), "https://example.test/"))
	s.PageQueued(0, "https://example.test/")
	s.PageResult(crawler.PageResult{Row: 0, URL: "https://example.test/"})
	s.Progress(1, 1)
	assert.NoError(t, s.Close(context.Background()))
}

func TestStore_Document(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &Store{site: "https://example.test/", logger: zap.NewNop(), now: func() time.Time { return at }}

	present := false
	doc := s.document(crawler.PageResult{
		Row:   4,
		URL:   "https://example.test/a",
		Depth: 1,
		Page: &parser.Page{
			Title:       "A",
			H1:          "Heading",
			BodyPresent: &present,
		},
		Issues:  []audit.Issue{{Kind: audit.DescMissing, Text: "none"}, {Kind: audit.BodyMissing, Text: "body"}},
		Verdict: audit.Bad,
	})

	assert.Equal(t, PageDocument{
		Site:        "https://example.test/",
		Row:         4,
		URL:         "https://example.test/a",
		Depth:       1,
		Title:       "A",
		H1:          "Heading",
		BodyPresent: &present,
		Verdict:     "bad",
		Issues: []IssueDoc{
			{Kind: "desc-missing", Text: "none"},
			{Kind: "body-missing", Text: "body"},
		},
		UpdatedAt: at,
	}, doc)

	failed := s.document(crawler.PageResult{
		Row:     5,
		URL:     "https://example.test/b",
		Issues:  audit.LoadFailure(),
		Verdict: audit.Bad,
		Err:     errors.New("timeout"),
	})
	assert.Equal(t, "timeout", failed.Error)
	assert.Empty(t, failed.Title)
	require.Len(t, failed.Issues, 2)
	assert.True(t, failed.Issues[0].LoadError)
}

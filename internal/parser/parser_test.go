package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title description and h1", func(t *testing.T) {
		t.Parallel()

		doc := `<html><head>
			<title>  Shop | Example  </title>
			<meta name="description" content=" Fresh produce delivered daily. ">
		</head><body>
			<h1>Fresh</h1><h1>  </h1><h1>Daily</h1>
		</body></html>`

		p, err := Extractor{}.Extract(doc, "https://example.com/")
		require.NoError(t, err)
		assert.Equal(t, "Shop | Example", p.Title)
		assert.Equal(t, "Fresh produce delivered daily.", p.Description)
		assert.Equal(t, "Fresh | Daily", p.H1)
		assert.Nil(t, p.BodyPresent)
	})

	t.Run("falls back to og then twitter description", func(t *testing.T) {
		t.Parallel()

		og := `<html><head><meta name="description" content="">
			<meta property="og:description" content="From OG"></head></html>`
		p, err := Extractor{}.Extract(og, "https://example.com/")
		require.NoError(t, err)
		assert.Equal(t, "From OG", p.Description)

		tw := `<html><head><meta name="twitter:description" content="From Twitter"></head></html>`
		p, err = Extractor{}.Extract(tw, "https://example.com/")
		require.NoError(t, err)
		assert.Equal(t, "From Twitter", p.Description)
	})

	t.Run("absent fields are empty", func(t *testing.T) {
		t.Parallel()

		p, err := Extractor{}.Extract(`<html><body><p>hi</p></body></html>`, "https://example.com/")
		require.NoError(t, err)
		assert.Empty(t, p.Title)
		assert.Empty(t, p.Description)
		assert.Empty(t, p.H1)
	})

	t.Run("non-markup body is a parse error", func(t *testing.T) {
		t.Parallel()

		_, err := Extractor{}.Extract(`{"error":"rate limited"}`, "https://example.com/x")
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "https://example.com/x", pe.URL)
		assert.ErrorIs(t, err, ErrNotHTML)
	})

	t.Run("detects content container", func(t *testing.T) {
		t.Parallel()

		doc := `<html><body><nav>menu</nav><article><p>Story text.</p></article></body></html>`
		p, err := Extractor{DetectBody: true}.Extract(doc, "https://example.com/")
		require.NoError(t, err)
		require.NotNil(t, p.BodyPresent)
		assert.True(t, *p.BodyPresent)
	})

	t.Run("long plain body counts as content", func(t *testing.T) {
		t.Parallel()

		doc := `<html><body><div>` + strings.Repeat("word ", 60) + `</div></body></html>`
		p, err := Extractor{DetectBody: true}.Extract(doc, "https://example.com/")
		require.NoError(t, err)
		assert.True(t, *p.BodyPresent)
	})

	t.Run("navigation-only page has no content", func(t *testing.T) {
		t.Parallel()

		doc := `<html><body><header>` + strings.Repeat("menu ", 100) + `</header>
			<script>var x = "` + strings.Repeat("a", 500) + `";</script>
			<footer>contacts</footer></body></html>`
		p, err := Extractor{DetectBody: true}.Extract(doc, "https://example.com/")
		require.NoError(t, err)
		assert.False(t, *p.BodyPresent)
	})
}

func TestParseLinks(t *testing.T) {
	t.Parallel()

	doc := []byte(`<html><body>
		<a href="/a">A</a>
		<a href="b?x=1#frag">B</a>
		<a href="https://other.test/x">ext</a>
		<a href="#top">skip</a>
		<a href="mailto:me@example.com">skip</a>
		<a href="javascript:void(0)">skip</a>
		<a href="/a">dup</a>
		<a>no href</a>
		<A HREF="/upper">upper</A>
	</body></html>`)

	links := ParseLinks("https://example.com/dir/page", doc)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/dir/b?x=1",
		"https://other.test/x",
		"https://example.com/upper",
	}, links)
}

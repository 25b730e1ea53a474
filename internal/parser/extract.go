// internal/parser/extract.go
package parser

import (
	"errors"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotHTML is wrapped in a ParseError when the body carries no markup at all.
var ErrNotHTML = errors.New("response is not HTML")

// MinBodyRunes is how many letters/digits a stripped <body> needs before it
// counts as main content when no content container is present.
const MinBodyRunes = 200

// Page is the SEO-relevant view of one HTML document. Empty strings mean
// the field is absent.
type Page struct {
	URL         string
	Title       string
	Description string
	H1          string
	Links       []string
	// BodyPresent is nil unless body detection is enabled.
	BodyPresent *bool
}

// Extractor turns HTML into a Page. With DetectBody set it also reports
// whether a main-content block was found.
type Extractor struct {
	DetectBody bool
}

var descriptionSelectors = []string{
	`meta[name="description"]`,
	`meta[property="og:description"]`,
	`meta[name="twitter:description"]`,
}

var contentSelectors = `article, main, [itemprop="articleBody"], .entry-content, .post-content, .article-body`

// Extract parses htmlText fetched from baseURL.
func (x Extractor) Extract(htmlText, baseURL string) (*Page, error) {
	if !strings.Contains(htmlText, "<") {
		return nil, &ParseError{URL: baseURL, Err: ErrNotHTML}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, &ParseError{URL: baseURL, Err: err}
	}

	p := &Page{
		URL:         baseURL,
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: firstContent(doc, descriptionSelectors),
		H1:          joinH1(doc),
		Links:       ParseLinks(baseURL, []byte(htmlText)),
	}
	if x.DetectBody {
		present := hasMainContent(doc)
		p.BodyPresent = &present
	}
	return p, nil
}

func firstContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).First().AttrOr("content", "")); v != "" {
			return v
		}
	}
	return ""
}

func joinH1(doc *goquery.Document) string {
	var parts []string
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " | ")
}

// hasMainContent mutates doc; call it last.
func hasMainContent(doc *goquery.Document) bool {
	doc.Find("script, style, noscript").Remove()

	found := false
	doc.Find(contentSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = countWordRunes(s.Text()) > 0
		return !found
	})
	if found {
		return true
	}

	// Remove noisy nodes
	doc.Find("nav, header, footer, aside").Remove()
	return countWordRunes(doc.Find("body").Text()) >= MinBodyRunes
}

// countWordRunes counts letters and digits, unicode-aware.
func countWordRunes(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			n++
		}
	}
	return n
}

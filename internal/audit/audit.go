// Package audit turns an extracted page into the list of SEO problems shown
// next to it, and the coarse ok/bad verdict derived from that list.
package audit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sitecrawl/internal/parser"
)

// MinDescriptionLength is the shortest meta description not flagged as short.
const MinDescriptionLength = 60

// Kind identifies a class of issue. Reports group URLs by kind.
type Kind string

const (
	TitleMissing Kind = "title-missing"
	DescMissing  Kind = "desc-missing"
	DescShort    Kind = "desc-short"
	H1Missing    Kind = "h1-missing"
	BodyMissing  Kind = "body-missing"
)

// Kinds lists every kind in report order.
var Kinds = []Kind{DescMissing, DescShort, TitleMissing, H1Missing, BodyMissing}

// Label is the group heading used when URLs are listed by kind.
func (k Kind) Label() string {
	switch k {
	case TitleMissing:
		return "Missing SEO title"
	case DescMissing, DescShort:
		return "Invalid meta description"
	case H1Missing:
		return "Missing H1"
	case BodyMissing:
		return "Missing main content"
	default:
		return string(k)
	}
}

// Issue is a single problem found on a page.
type Issue struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// LoadError is set when the page could not be fetched or parsed at all.
	LoadError bool `json:"load_error,omitempty"`
}

// Verdict is the per-page outcome.
type Verdict string

const (
	OK  Verdict = "ok"
	Bad Verdict = "bad"
)

// Check inspects p. A nil page yields the load-failure issues.
func Check(p *parser.Page) []Issue {
	if p == nil {
		return LoadFailure()
	}

	var issues []Issue
	title := strings.TrimSpace(p.Title)
	desc := strings.TrimSpace(p.Description)
	h1 := strings.TrimSpace(p.H1)

	if title == "" {
		issues = append(issues, Issue{Kind: TitleMissing, Text: "Missing SEO title (<title>)"})
	}
	if desc == "" {
		issues = append(issues, Issue{Kind: DescMissing, Text: "Invalid meta description (none)"})
	} else if n := utf8.RuneCountInString(desc); n < MinDescriptionLength {
		issues = append(issues, Issue{
			Kind: DescShort,
			Text: fmt.Sprintf("Invalid meta description (<%d characters: %d)", MinDescriptionLength, n),
		})
	}
	if h1 == "" {
		issues = append(issues, Issue{Kind: H1Missing, Text: "Missing H1"})
	}
	if p.BodyPresent != nil && !*p.BodyPresent {
		issues = append(issues, Issue{Kind: BodyMissing, Text: "No main content block"})
	}
	return issues
}

// LoadFailure is what a page that never produced HTML is flagged with.
func LoadFailure() []Issue {
	return []Issue{
		{Kind: TitleMissing, Text: "Missing SEO title (load error)", LoadError: true},
		{Kind: DescMissing, Text: "Invalid meta description (load error)", LoadError: true},
	}
}

// VerdictOf is Bad when any issue exists.
func VerdictOf(issues []Issue) Verdict {
	if len(issues) > 0 {
		return Bad
	}
	return OK
}

// Auditor adapts Check to the crawler's auditor interface.
type Auditor struct{}

func (Auditor) Audit(p *parser.Page) []Issue { return Check(p) }

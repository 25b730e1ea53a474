package parser

import "fmt"

// ParseError reports an HTML document that could not be turned into a Page.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

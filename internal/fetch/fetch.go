// Package fetch acquires listing pages and exposes them as queryable
// documents. Two backends exist: a plain HTTP client for static markup and a
// headless browser for pages that render their listings with JavaScript. Both
// hand back the same goquery-backed snapshot, so everything downstream is
// backend-agnostic.
package fetch

import "context"

// Queryable is the query surface shared by documents and elements. CSS
// selectors are not validated here; a selector that does not compile simply
// matches nothing.
type Queryable interface {
	// QueryOne returns the first descendant matching css in document order.
	QueryOne(css string) (Element, bool)
	// QueryAll returns all descendants matching css in document order.
	QueryAll(css string) []Element
}

// Document is a parsed page.
type Document interface {
	Queryable
	// Close releases any resources held by the document.
	Close() error
}

// Element is a single element within a document.
type Element interface {
	Queryable
	// Text returns the concatenated text of the element and its descendants.
	Text() string
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// TagName returns the lowercase tag name, e.g. "a" or "img".
	TagName() string
}

// Fetcher turns a URL into a Document.
type Fetcher interface {
	Open(ctx context.Context, pageURL string) (Document, error)
	// Close tears down backend resources. The fetcher must not be used after.
	Close() error
	// Name identifies the backend in logs and metrics.
	Name() string
}

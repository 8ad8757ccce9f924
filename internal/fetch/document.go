package fetch

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

type htmlDocument struct {
	doc *goquery.Document
}

type htmlElement struct {
	sel *goquery.Selection
}

// ParseHTML parses r into a Document. The parser is lenient, so malformed
// markup still yields a tree; only read failures surface as errors.
func ParseHTML(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &htmlDocument{doc: doc}, nil
}

func (d *htmlDocument) QueryOne(css string) (Element, bool) {
	return queryOne(d.doc.Selection, css)
}

func (d *htmlDocument) QueryAll(css string) []Element {
	return queryAll(d.doc.Selection, css)
}

func (d *htmlDocument) Close() error { return nil }

func (e *htmlElement) QueryOne(css string) (Element, bool) {
	return queryOne(e.sel, css)
}

func (e *htmlElement) QueryAll(css string) []Element {
	return queryAll(e.sel, css)
}

func (e *htmlElement) Text() string {
	return e.sel.Text()
}

func (e *htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *htmlElement) TagName() string {
	return goquery.NodeName(e.sel)
}

func queryOne(root *goquery.Selection, css string) (Element, bool) {
	sel := root.Find(css).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &htmlElement{sel: sel}, true
}

func queryAll(root *goquery.Selection, css string) []Element {
	found := root.Find(css)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, sel *goquery.Selection) {
		out = append(out, &htmlElement{sel: sel})
	})
	return out
}

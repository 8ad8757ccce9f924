// Package extract pulls field values out of a queryable scope using selector
// expressions. Failures are reported as typed errors so callers decide how
// loud to be about them; a selector that matches nothing is not a failure, it
// is just an empty value.
package extract

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"

	"estateparser/internal/fetch"
	"estateparser/internal/selector"
)

const (
	opText = "text"
	opAttr = "attr"
	opList = "list"
)

// Error marks a selector expression whose CSS part does not compile.
type Error struct {
	Selector string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s %q: %v", e.Op, e.Selector, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// One extracts a single value from scope. With an attribute directive in expr
// the attribute value is returned (empty when absent), otherwise the matched
// element's trimmed text. An empty expr or no match yields "" without error.
//
// An empty CSS part addresses the scope itself, which only works when the
// scope is an element; a whole document has no text or attributes of its own.
func One(scope fetch.Queryable, expr string) (string, error) {
	if expr == "" {
		return "", nil
	}
	p := selector.Parse(expr)
	if err := checkCSS(opText, expr, p.CSS); err != nil {
		return "", err
	}

	el, ok := matchOne(scope, p.CSS)
	if !ok {
		return "", nil
	}
	if p.HasAttr() {
		v, _ := el.Attr(p.Attr)
		return v, nil
	}
	return strings.TrimSpace(el.Text()), nil
}

// AttrOf extracts an attribute value, preferring the attribute named in expr
// and falling back to defaultAttr.
func AttrOf(scope fetch.Queryable, expr, defaultAttr string) (string, error) {
	if expr == "" {
		return "", nil
	}
	p := selector.Parse(expr)
	if err := checkCSS(opAttr, expr, p.CSS); err != nil {
		return "", err
	}

	attr := p.Attr
	if attr == "" {
		attr = defaultAttr
	}

	el, ok := matchOne(scope, p.CSS)
	if !ok {
		return "", nil
	}
	v, _ := el.Attr(attr)
	return v, nil
}

// Many extracts one value per match, in document order. The attribute comes
// from expr when present, else defaultAttr; an empty defaultAttr means
// trimmed text. Values that come up empty are dropped.
func Many(scope fetch.Queryable, expr, defaultAttr string) ([]string, error) {
	if expr == "" {
		return nil, nil
	}
	p := selector.Parse(expr)
	if err := checkCSS(opList, expr, p.CSS); err != nil {
		return nil, err
	}

	attr := p.Attr
	if attr == "" {
		attr = defaultAttr
	}

	var out []string
	for _, el := range matchAll(scope, p.CSS) {
		var v string
		if attr != "" {
			v, _ = el.Attr(attr)
		} else {
			v = strings.TrimSpace(el.Text())
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func checkCSS(op, expr, css string) error {
	if css == "" {
		return nil
	}
	if _, err := cascadia.Compile(css); err != nil {
		return &Error{Selector: expr, Op: op, Err: err}
	}
	return nil
}

func matchOne(scope fetch.Queryable, css string) (fetch.Element, bool) {
	if css == "" {
		el, ok := scope.(fetch.Element)
		return el, ok
	}
	return scope.QueryOne(css)
}

func matchAll(scope fetch.Queryable, css string) []fetch.Element {
	if css == "" {
		if el, ok := scope.(fetch.Element); ok {
			return []fetch.Element{el}
		}
		return nil
	}
	return scope.QueryAll(css)
}

// Package selector parses selector expressions: a CSS selector optionally
// suffixed with an attribute directive in either the shorthand form
// "a@href" or the scrapy-style form "a::attr(href)".
package selector

import (
	"regexp"
	"strings"
	"unicode"
)

// Parsed is the result of splitting a selector expression. An empty CSS means
// "the current element itself"; an empty Attr means the extraction target is
// text content.
type Parsed struct {
	CSS  string
	Attr string
}

var attrDirective = regexp.MustCompile(`::attr\(([^)]+)\)$`)

// Parse splits a selector expression into its CSS part and optional attribute.
//
// The "::attr(NAME)" suffix takes priority; otherwise the expression is split
// on the last "@". Expressions with neither form are returned unchanged with
// no attribute. Parse never fails: selector syntax is not validated here, so
// a malformed CSS part surfaces as an extraction-time failure instead.
func Parse(expr string) Parsed {
	if expr == "" {
		return Parsed{}
	}

	if m := attrDirective.FindStringSubmatchIndex(expr); m != nil {
		return Parsed{
			CSS:  strings.TrimRightFunc(expr[:m[0]], unicode.IsSpace),
			Attr: expr[m[2]:m[3]],
		}
	}

	if i := strings.LastIndex(expr, "@"); i >= 0 {
		return Parsed{
			CSS:  strings.TrimRightFunc(expr[:i], unicode.IsSpace),
			Attr: strings.TrimSpace(expr[i+1:]),
		}
	}

	return Parsed{CSS: expr}
}

// HasAttr reports whether the expression carried an explicit attribute
// directive.
func (p Parsed) HasAttr() bool {
	return p.Attr != ""
}

// Package urlutil converts the relative URLs found in listing markup into
// absolute ones.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize makes raw absolute relative to base.
//
// An empty raw stays empty and anything already carrying an http or https
// scheme is returned untouched. Everything else, scheme-relative references
// included, is resolved against base per RFC 3986. When base is empty or
// either side does not parse, raw is returned as-is rather than failing the
// whole listing.
func Normalize(raw, base string) string {
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	if base == "" {
		return raw
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(ref).String()
}

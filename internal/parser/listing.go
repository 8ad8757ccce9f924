package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"estateparser/internal/domain"
	"estateparser/internal/extract"
	"estateparser/internal/fetch"
	"estateparser/internal/selector"
	"estateparser/internal/urlutil"
)

// photoAttrChain is the attribute order tried when the photo selector names
// none itself. Covers plain markup and the common lazy-loading variants.
var photoAttrChain = []string{"src", "data-src", "data-lazy-src"}

var styleURL = regexp.MustCompile(`url\(["']?([^"']+)["']?\)`)

// assembleListing builds one listing record from a matched element. Selector
// problems are logged and leave the affected field empty; a record missing
// its object URL is dropped by the caller.
func (p *Parser) assembleListing(el fetch.Element, selectors map[string]string, baseURL string) domain.Listing {
	listing := domain.NewListing(baseURL)

	if expr, ok := selectors["object_url"]; ok {
		listing.ObjectURL = p.objectURL(el, expr, baseURL)
	}

	for _, field := range domain.ScalarFields {
		expr, ok := selectors[field]
		if !ok {
			continue
		}
		value, err := extract.One(el, expr)
		if err != nil {
			p.logger.Warn("field extraction failed",
				zap.String("field", field),
				zap.String("selector", expr),
				zap.Error(err))
			p.metrics.IncErrorsTotal("bad_selector")
			continue
		}
		listing.SetField(field, value)
	}

	if expr, ok := selectors["photos"]; ok {
		listing.Photos = p.photos(el, expr, baseURL)
	}

	return listing
}

// objectURL resolves the listing's detail-page link: the named attribute on
// the element itself, then on a descendant matched by the selector's css
// part, and as a last resort the element's own href when it is an anchor.
func (p *Parser) objectURL(el fetch.Element, expr, baseURL string) string {
	parsed := selector.Parse(expr)
	attr := parsed.Attr
	if attr == "" {
		attr = "href"
	}

	raw, _ := el.Attr(attr)
	if raw == "" && parsed.CSS != "" {
		if found, ok := el.QueryOne(parsed.CSS); ok {
			raw, _ = found.Attr(attr)
		}
	}

	objectURL := urlutil.Normalize(raw, baseURL)
	if objectURL == "" && el.TagName() == "a" {
		href, _ := el.Attr("href")
		objectURL = urlutil.Normalize(href, baseURL)
	}
	return objectURL
}

// photos extracts and normalizes the photo URL list. An explicit attribute in
// the selector is used as-is; otherwise the lazy-loading fallback chain runs.
func (p *Parser) photos(el fetch.Element, expr, baseURL string) []string {
	parsed := selector.Parse(expr)

	var raws []string
	var err error
	if parsed.HasAttr() {
		raws, err = extract.Many(el, expr, "")
	} else {
		raws, err = p.photoFallback(el, parsed.CSS)
	}
	if err != nil {
		p.logger.Warn("photo extraction failed",
			zap.String("selector", expr), zap.Error(err))
		p.metrics.IncErrorsTotal("bad_selector")
		return []string{}
	}

	photos := make([]string, 0, len(raws))
	for _, raw := range raws {
		if raw == "" {
			continue
		}
		photos = append(photos, urlutil.Normalize(raw, baseURL))
	}
	return photos
}

// photoFallback tries each known image attribute in turn and finally scans
// the style attribute for a background-image url(). Without a css part there
// are no candidate elements, so nothing is extracted.
func (p *Parser) photoFallback(el fetch.Element, css string) ([]string, error) {
	if css == "" {
		return nil, nil
	}

	for _, attr := range photoAttrChain {
		raws, err := extract.Many(el, css, attr)
		if err != nil {
			return nil, err
		}
		if len(raws) > 0 {
			return raws, nil
		}
	}

	var raws []string
	for _, img := range el.QueryAll(css) {
		style, _ := img.Attr("style")
		if !strings.Contains(style, "url(") {
			continue
		}
		if m := styleURL.FindStringSubmatch(style); m != nil {
			raws = append(raws, m[1])
		}
	}
	return raws, nil
}

package parser

import (
	"context"
	"time"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"

	"estateparser/internal/domain"
	"estateparser/internal/fetch"
	"estateparser/internal/selector"
)

// parseSite fetches one listing page and assembles a record per matched
// element. Anything that goes wrong here is logged and yields an empty
// result; the caller moves on to the next site.
func (p *Parser) parseSite(ctx context.Context, siteURL string, selectors map[string]string) []domain.Listing {
	start := time.Now()

	doc, err := p.fetcher.Open(ctx, siteURL)
	if err != nil {
		p.logger.Warn("failed to fetch site",
			zap.String("site_url", siteURL), zap.Error(err))
		p.metrics.IncSitesParsed("fetch_failed")
		p.metrics.IncErrorsTotal("fetch_failed")
		return nil
	}
	defer doc.Close()

	objectExpr, ok := selectors["object_url"]
	if !ok {
		p.logger.Warn("site has no object_url selector",
			zap.String("site_url", siteURL))
		p.metrics.IncSitesParsed("skipped")
		return nil
	}

	objectCSS := selector.Parse(objectExpr).CSS
	if objectCSS != "" {
		if _, cerr := cascadia.Compile(objectCSS); cerr != nil {
			p.logger.Warn("invalid object selector",
				zap.String("site_url", siteURL),
				zap.String("selector", objectCSS),
				zap.Error(cerr))
			p.metrics.IncSitesParsed("no_objects")
			p.metrics.IncErrorsTotal("bad_selector")
			return nil
		}
	}

	var elements []fetch.Element
	if objectCSS != "" {
		elements = doc.QueryAll(objectCSS)
	}
	if len(elements) == 0 {
		p.logger.Warn("no objects found",
			zap.String("site_url", siteURL),
			zap.String("selector", objectCSS))
		p.metrics.IncSitesParsed("no_objects")
		return nil
	}

	p.logger.Info("objects found",
		zap.String("site_url", siteURL), zap.Int("count", len(elements)))

	results := make([]domain.Listing, 0, len(elements))
	for _, el := range elements {
		listing := p.assembleListing(el, selectors, siteURL)
		// Records without a detail-page URL are unusable downstream.
		if listing.ObjectURL == "" {
			continue
		}
		results = append(results, listing)
	}

	p.metrics.IncSitesParsed("ok")
	p.metrics.AddListingsExtracted(len(results))
	p.metrics.ObserveSiteParse(p.fetcher.Name(), time.Since(start))
	p.logger.Info("site parsed",
		zap.String("site_url", siteURL), zap.Int("listings", len(results)))

	p.sleep(ctx)

	return results
}

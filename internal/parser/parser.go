// Package parser implements the extraction pipeline: it visits each requested
// site, locates the listing elements on the page, and assembles listing
// records according to the site's selector map.
package parser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"estateparser/internal/domain"
	"estateparser/internal/fetch"
	"estateparser/internal/monitoring"
)

// Parser walks sites sequentially with a configurable delay between them.
type Parser struct {
	fetcher fetch.Fetcher
	metrics *monitoring.Metrics
	logger  *zap.Logger
	delay   time.Duration
}

func New(f fetch.Fetcher, m *monitoring.Metrics, l *zap.Logger, delay time.Duration) *Parser {
	return &Parser{
		fetcher: f,
		metrics: m,
		logger:  l,
		delay:   delay,
	}
}

// ParseAll processes the sites in order and concatenates their listings.
// Sites without a URL or without selectors are skipped with a log entry, and
// a failure on one site never prevents the next from being processed. The
// result is never nil.
func (p *Parser) ParseAll(ctx context.Context, sites []domain.SiteRequest) []domain.Listing {
	all := make([]domain.Listing, 0)

	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("parsing cancelled", zap.Error(err))
			break
		}

		if site.SiteURL == "" {
			p.logger.Warn("skipping site without url")
			p.metrics.IncSitesParsed("skipped")
			continue
		}
		if len(site.Selectors) == 0 {
			p.logger.Warn("skipping site without selectors",
				zap.String("site_url", site.SiteURL))
			p.metrics.IncSitesParsed("skipped")
			continue
		}

		p.logger.Info("parsing site", zap.String("site_url", site.SiteURL))
		all = append(all, p.parseSite(ctx, site.SiteURL, site.Selectors)...)
	}

	return all
}

// sleep waits out the inter-site delay, returning early on cancellation.
func (p *Parser) sleep(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

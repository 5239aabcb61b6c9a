package scraper

import (
	"context"

	"github.com/rs/zerolog"

	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
)

// ProxySource hands out proxies and takes back the ones that failed.
// *proxypool.Manager implements it.
type ProxySource interface {
	GetProxy(ctx context.Context) (string, error)
	ForgetProxy(url string)
}

// ProxiedScraper is a PageScraper whose proxy can be switched.
type ProxiedScraper interface {
	PageScraper
	SetProxy(proxy string)
}

// ProxyScraper scrapes through a proxy from the pool and rotates to another
// one when a connection fails or times out. The rotation budget is spent over
// the lifetime of the ProxyScraper, not per call.
type ProxyScraper struct {
	pool    ProxySource
	scraper ProxiedScraper
	retries int
	proxy   string
	log     zerolog.Logger
}

// NewProxyScraper wraps s with proxy rotation bounded by retries.
func NewProxyScraper(pool ProxySource, s ProxiedScraper, retries int) *ProxyScraper {
	if retries < 0 {
		retries = 0
	}
	return &ProxyScraper{
		pool:    pool,
		scraper: s,
		retries: retries,
		log:     logger.WithComponent("ProxyScraper"),
	}
}

// Proxy returns the proxy currently held, "" if none.
func (p *ProxyScraper) Proxy() string { return p.proxy }

// Retries returns the remaining rotation budget.
func (p *ProxyScraper) Retries() int { return p.retries }

// Scrape fetches uri through the held proxy, acquiring one first if needed.
// It fails with errs.ErrProxyUnavailable when the pool has nothing left and with
// *errs.ProxyScraperError once the rotation budget is spent. Any error other
// than a connection failure is returned unchanged.
func (p *ProxyScraper) Scrape(ctx context.Context, uri string, params, headers map[string]string) (string, error) {
	for {
		if p.proxy == "" {
			proxy, err := p.pool.GetProxy(ctx)
			if err != nil {
				return "", err
			}
			if proxy == "" {
				return "", errs.ErrProxyUnavailable
			}
			p.proxy = proxy
			p.scraper.SetProxy(proxy)
		}

		text, err := p.scraper.Scrape(ctx, uri, params, headers)
		if err == nil {
			return text, nil
		}
		if !errs.IsConnectionFailure(err) {
			return "", err
		}
		if p.retries == 0 {
			return "", &errs.ProxyScraperError{Err: err}
		}

		p.log.Warn().Err(err).Str("proxy", p.proxy).Int("retries_left", p.retries-1).Msg("Proxy failed, rotating.")
		p.pool.ForgetProxy(p.proxy)
		p.proxy = ""
		p.retries--
	}
}

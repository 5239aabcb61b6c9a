package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"f1stats/internal/cache"
	"f1stats/internal/fetcher"
	"f1stats/internal/scraper"
	"f1stats/internal/shared/logger"
	"f1stats/internal/shared/types"
	"f1stats/proxypool"
	"f1stats/proxypool/validator"
)

// Cache prefixes used by the pipeline.
const (
	ScrapedDataPrefix  = "scraped_data"
	ProxyCatalogPrefix = "proxy_catalog"
)

// Pipeline fetches pages by site code and remembers them on disk.
type Pipeline struct {
	registry *Registry
	memo     *cache.Memo
	site     string
}

// New builds a Pipeline over registry. A nil memo disables caching.
func New(registry *Registry, memo *cache.Memo, defaultSite string) *Pipeline {
	if memo == nil {
		memo = cache.Disabled()
	}
	return &Pipeline{registry: registry, memo: memo, site: defaultSite}
}

// Site returns the default site code.
func (p *Pipeline) Site() string { return p.site }

// Registry returns the site registry.
func (p *Pipeline) Registry() *Registry { return p.registry }

// ScrapeData returns the page at uri of site. Identical arguments are served
// from the cache on later calls, across runs.
func (p *Pipeline) ScrapeData(ctx context.Context, site, uri string, params, headers map[string]string) (string, error) {
	s, err := p.registry.Lookup(site)
	if err != nil {
		return "", err
	}
	return cache.Call(p.memo, func() (string, error) {
		return s.Scrape(ctx, uri, params, headers)
	}, site, uri, params, headers)
}

// memoizedScraper caches the pages of one scraper, keyed by host and request.
type memoizedScraper struct {
	memo    *cache.Memo
	scraper *scraper.Scraper
}

func (m *memoizedScraper) Scrape(ctx context.Context, uri string, params, headers map[string]string) (string, error) {
	return cache.CallMethod(m.memo, func() (string, error) {
		return m.scraper.Scrape(ctx, uri, params, headers)
	}, m, m.scraper.Host(), uri, params, headers)
}

// Build wires the pipeline described by cfg: one scraper for cfg.Site, routed
// through a ProxyScraper when the proxy pool is enabled.
func Build(cfg *types.Config) (*Pipeline, error) {
	l := logger.WithComponent("Pipeline")

	f := fetcher.New(fetcher.Options{
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
	})

	pageMemo, err := newMemo(cfg, ScrapedDataPrefix)
	if err != nil {
		return nil, err
	}

	timeout := seconds(cfg.ScrapeConf.Timeout)
	if cfg.ProxyConf.Enabled {
		timeout = seconds(cfg.ProxyConf.Timeout)
	}
	site, err := scraper.New(cfg.Site, scraper.Options{
		Protocol: cfg.ScrapeConf.Protocol,
		Timeout:  timeout,
		Fetcher:  f,
	})
	if err != nil {
		return nil, eris.Wrap(err, "site scraper")
	}

	registry := NewRegistry()
	if !cfg.ProxyConf.Enabled {
		registry.Register(cfg.Site, site)
		l.Info().Str("site", cfg.Site).Bool("cache", pageMemo.Enabled()).Msg("Pipeline ready, direct connection.")
		return New(registry, pageMemo, cfg.Site), nil
	}

	catalog, err := scraper.New(cfg.CatalogDomain, scraper.Options{
		Protocol: cfg.CatalogProtocol,
		Timeout:  seconds(cfg.ScrapeConf.Timeout),
		Fetcher:  f,
	})
	if err != nil {
		return nil, eris.Wrap(err, "proxy catalog scraper")
	}
	catalogMemo, err := newMemo(cfg, ProxyCatalogPrefix)
	if err != nil {
		return nil, err
	}

	pool := proxypool.NewManager(
		&memoizedScraper{memo: catalogMemo, scraper: catalog},
		validator.NewValidator(cfg.CheckURL, seconds(cfg.CheckTimeout), cfg.UserAgent),
		cfg.CatalogPath,
	)
	registry.Register(cfg.Site, scraper.NewProxyScraper(pool, site, cfg.Retries))

	l.Info().
		Str("site", cfg.Site).
		Str("catalog", catalog.URL(cfg.CatalogPath)).
		Int("retries", cfg.Retries).
		Bool("cache", pageMemo.Enabled()).
		Msg("Pipeline ready, routed through proxy pool.")
	return New(registry, pageMemo, cfg.Site), nil
}

func newMemo(cfg *types.Config, prefix string) (*cache.Memo, error) {
	if !cfg.ScrapeConf.Cache {
		return cache.Disabled(), nil
	}
	c, err := cache.New(cfg.StorageConf.Path, prefix)
	if err != nil {
		return nil, err
	}
	return cache.NewMemo(c), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

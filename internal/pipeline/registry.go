// Package pipeline wires scrapers, the proxy pool and the page cache for one run.
package pipeline

import (
	"sort"
	"strconv"

	"f1stats/internal/scraper"
	"f1stats/internal/shared/errs"
)

// Registry maps a site code ("f1news.ru") to the scraper serving it.
// It is built once per run and is not safe for concurrent registration.
type Registry struct {
	scrapers map[string]scraper.PageScraper
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]scraper.PageScraper)}
}

// Register binds site to s, replacing any earlier binding.
func (r *Registry) Register(site string, s scraper.PageScraper) {
	r.scrapers[site] = s
}

// Lookup returns the scraper for site.
func (r *Registry) Lookup(site string) (scraper.PageScraper, error) {
	s, ok := r.scrapers[site]
	if !ok {
		return nil, errs.NewConfigurationError("site", "no scraper registered for "+strconv.Quote(site))
	}
	return s, nil
}

// Sites lists the registered site codes, sorted.
func (r *Registry) Sites() []string {
	sites := make([]string, 0, len(r.scrapers))
	for site := range r.scrapers {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

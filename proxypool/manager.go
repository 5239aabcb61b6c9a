package proxypool

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"f1stats/internal/parser"
	"f1stats/internal/shared/logger"
	"f1stats/proxypool/model"
)

// DefaultCatalogPath is the proxy list page on the catalog site.
const DefaultCatalogPath = "proxy-list"

// PageSource fetches the catalog page. The pipeline passes its memoized scraper.
type PageSource interface {
	Scrape(ctx context.Context, uri string, params, headers map[string]string) (string, error)
}

// Checker health-checks one proxy URL.
type Checker interface {
	Check(ctx context.Context, proxyURL string) error
}

// Manager hands out working proxies and remembers the ones that failed.
// Exclusions are in memory and last as long as the Manager.
type Manager struct {
	source      PageSource
	checker     Checker
	catalogPath string
	log         zerolog.Logger

	mu         sync.Mutex
	excluded   map[string]struct{}
	candidates map[string]*model.Candidate
}

// NewManager builds a Manager reading catalogPath (DefaultCatalogPath if empty) from source.
func NewManager(source PageSource, checker Checker, catalogPath string) *Manager {
	if catalogPath == "" {
		catalogPath = DefaultCatalogPath
	}
	return &Manager{
		source:      source,
		checker:     checker,
		catalogPath: catalogPath,
		log:         logger.WithComponent("ProxyPool/Manager"),
		excluded:    make(map[string]struct{}),
		candidates:  make(map[string]*model.Candidate),
	}
}

// GetProxy returns the first catalog entry, in page order, that is not excluded
// and passes a health check. It returns "" and no error when none does.
// Catalog fetch and parse failures are returned as errors.
func (m *Manager) GetProxy(ctx context.Context) (string, error) {
	html, err := m.source.Scrape(ctx, m.catalogPath, nil, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch proxy catalog")
	}
	catalog, err := parser.NewProxyCatalog(html)
	if err != nil {
		return "", err
	}
	ips, err := catalog.ProxyIPs()
	if err != nil {
		return "", err
	}
	m.log.Debug().Int("count", len(ips)).Msg("Proxy catalog loaded.")

	for _, ip := range ips {
		c, err := model.ParseCandidate(ip)
		if err != nil {
			m.log.Warn().Err(err).Msg("Skipping unparsable catalog entry.")
			continue
		}
		url := c.URL()
		if m.isExcluded(url) {
			continue
		}

		m.track(c, model.Validating, 0)
		start := time.Now()
		if err := m.checker.Check(ctx, url); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			m.track(c, model.Rejected, time.Since(start))
			m.log.Debug().Err(err).Str("proxy", url).Msg("Proxy rejected.")
			continue
		}

		latency := time.Since(start)
		m.track(c, model.Active, latency)
		m.log.Info().Str("proxy", url).Dur("latency", latency).Msg("Proxy selected.")
		return url, nil
	}

	m.log.Warn().Int("candidates", len(ips)).Msg("No working proxy in catalog.")
	return "", nil
}

// ForgetProxy excludes url from every later GetProxy of this Manager.
func (m *Manager) ForgetProxy(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded[url] = struct{}{}
	if c, ok := m.candidates[url]; ok {
		c.State = model.Excluded
	}
	m.log.Info().Str("proxy", url).Msg("Proxy excluded.")
}

// Excluded returns the excluded proxy URLs, sorted.
func (m *Manager) Excluded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.excluded))
	for url := range m.excluded {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

// State returns the last known state of url. Unseen proxies are Discovered,
// forgotten ones Excluded.
func (m *Manager) State(url string) model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.excluded[url]; ok {
		return model.Excluded
	}
	if c, ok := m.candidates[url]; ok {
		return c.State
	}
	return model.Discovered
}

// Candidate returns a copy of what is known about url from health checks.
func (m *Manager) Candidate(url string) (model.Candidate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[url]
	if !ok {
		return model.Candidate{}, false
	}
	return *c, true
}

func (m *Manager) isExcluded(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.excluded[url]
	return ok
}

func (m *Manager) track(c model.Candidate, s model.State, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.State = s
	if s != model.Validating {
		c.Latency = latency
		c.LastChecked = time.Now()
	}
	m.candidates[c.URL()] = &c
}

// Package scraper builds site URLs and fetches pages, optionally rotating proxies.
package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"f1stats/internal/fetcher"
	"f1stats/internal/shared/errs"
)

// PageScraper is what the pipeline and the proxy pool need from a scraper.
type PageScraper interface {
	Scrape(ctx context.Context, uri string, params, headers map[string]string) (string, error)
}

// Getter performs one validated GET. *fetcher.Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, req fetcher.Request) (string, error)
}

// Options configure a Scraper.
type Options struct {
	Protocol string // "http" or "https", default "http"
	Port     int    // 0 means the scheme default
	Timeout  time.Duration
	Proxy    string
	Fetcher  Getter
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// Scraper fetches pages of one host.
type Scraper struct {
	host     string
	protocol string
	port     int
	timeout  time.Duration
	proxy    string
	fetcher  Getter
}

// New validates the protocol and normalizes host: lowercased, trimmed, without
// scheme or trailing slash.
func New(host string, opts Options) (*Scraper, error) {
	protocol := strings.ToLower(strings.TrimSpace(opts.Protocol))
	if protocol == "" {
		protocol = "http"
	}
	if protocol != "http" && protocol != "https" {
		return nil, errs.NewConfigurationError("protocol",
			"unsupported `"+opts.Protocol+"`, use `http` or `https` only")
	}

	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimRight(schemePrefix.ReplaceAllString(host, ""), "/")
	if host == "" {
		return nil, errs.NewConfigurationError("host", "cannot be empty or blank")
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher.New(fetcher.Options{})
	}

	return &Scraper{
		host:     host,
		protocol: protocol,
		port:     opts.Port,
		timeout:  opts.Timeout,
		proxy:    opts.Proxy,
		fetcher:  opts.Fetcher,
	}, nil
}

// Host returns the normalized host.
func (s *Scraper) Host() string { return s.host }

// SetProxy routes later scrapes through proxy. Empty means direct.
func (s *Scraper) SetProxy(proxy string) { s.proxy = proxy }

// Proxy returns the current proxy.
func (s *Scraper) Proxy() string { return s.proxy }

// URL renders protocol://host[:port]/path for uri. The path is lowercased and
// stripped of surrounding slashes.
func (s *Scraper) URL(uri string) string {
	var b strings.Builder
	b.WriteString(s.protocol)
	b.WriteString("://")
	b.WriteString(s.host)
	if s.port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(s.port))
	}
	b.WriteString("/")
	b.WriteString(strings.Trim(strings.ToLower(strings.TrimSpace(uri)), "/"))
	return b.String()
}

// Request builds the fetch request for uri.
func (s *Scraper) Request(uri string, params, headers map[string]string) fetcher.Request {
	return fetcher.Request{
		URL:     s.URL(uri),
		Timeout: s.timeout,
		Params:  params,
		Headers: headers,
		Proxy:   s.proxy,
		Secure:  s.protocol == "https",
	}
}

// Scrape fetches uri and returns the page text.
func (s *Scraper) Scrape(ctx context.Context, uri string, params, headers map[string]string) (string, error) {
	return s.fetcher.Get(ctx, s.Request(uri, params, headers))
}

package fetcher

import (
	"net/url"
	"strings"
	"time"

	"f1stats/internal/shared/errs"
)

// Request fully determines one GET. It is not modified while being fetched.
type Request struct {
	URL     string
	Timeout time.Duration
	Params  map[string]string
	Headers map[string]string
	// Proxy is an http://ip:port URL. Empty means a direct connection.
	Proxy string
	// Secure selects the scheme the proxy is used for: https when true, http otherwise.
	Secure bool
}

// Validate checks the required fields before any network access.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errs.NewConfigurationError("url", "cannot be empty or blank")
	}
	if r.Timeout <= 0 {
		return errs.NewConfigurationError("timeout", "must be positive")
	}
	if r.Proxy != "" {
		if _, err := url.Parse(r.Proxy); err != nil {
			return &errs.ConfigurationError{Field: "proxy", Reason: "is not a valid URL", Err: err}
		}
	}
	return nil
}

// proxyFor returns the proxy to dial through, honouring the Secure scheme selector.
func (r Request) proxyFor() string {
	if r.Proxy == "" {
		return ""
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	scheme := "http"
	if r.Secure {
		scheme = "https"
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return ""
	}
	return r.Proxy
}

// FullURL renders the URL with its query string, without a trailing slash before the query.
// Spaces in parameters are encoded as '+'.
func FullURL(r Request) string {
	u := strings.TrimSuffix(r.URL, "/")
	if r.Params == nil {
		return u
	}
	values := make(url.Values, len(r.Params))
	for k, v := range r.Params {
		values.Set(k, v)
	}
	return u + "?" + values.Encode()
}

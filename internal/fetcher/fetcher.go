// Package fetcher performs the retried, optionally proxied GET requests of the pipeline.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"f1stats/internal/resilience"
	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
)

// Options tune a Fetcher. The zero value is usable.
type Options struct {
	// RateLimit caps outgoing requests per second. Zero disables the limiter.
	RateLimit float64
	// UserAgent is sent unless the request sets its own.
	UserAgent string
	// Policy overrides resilience.DefaultPolicy().
	Policy *resilience.Policy
}

// Fetcher issues GET requests and returns bodies decoded to UTF-8.
type Fetcher struct {
	opts    Options
	policy  resilience.Policy
	limiter *rate.Limiter
	log     zerolog.Logger

	mu      sync.Mutex
	clients map[string]*resty.Client // keyed by proxy URL, "" for direct
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	policy := resilience.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	if policy.OnRetry == nil {
		policy.OnRetry = resilience.RetryLogger("Fetcher", "get")
	}

	f := &Fetcher{
		opts:    opts,
		policy:  policy,
		log:     logger.WithComponent("Fetcher"),
		clients: make(map[string]*resty.Client),
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return f
}

// Get validates req and performs the GET under the retry policy.
// Failures are *errs.HTTPError values of kind connection, timeout or status.
func (f *Fetcher) Get(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return resilience.DoVal(ctx, f.policy, func(ctx context.Context) (string, error) {
		return f.get(ctx, req)
	})
}

func (f *Fetcher) get(ctx context.Context, req Request) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "rate limiter")
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	proxy := req.proxyFor()
	r := f.client(proxy).R().
		SetContext(attemptCtx).
		SetQueryParams(req.Params).
		SetHeaders(req.Headers)

	f.log.Debug().Str("url", FullURL(req)).Str("proxy", proxy).Msg("GET")

	resp, err := r.Get(req.URL)
	if err != nil {
		// a cancelled caller is not a transient failure
		if ctx.Err() != nil {
			return "", eris.Wrapf(ctx.Err(), "get %s", req.URL)
		}
		return "", classify(req.URL, err)
	}
	if !resp.IsSuccess() {
		return "", &errs.HTTPError{Kind: errs.KindStatus, URL: req.URL, StatusCode: resp.StatusCode()}
	}

	body, err := decode(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", eris.Wrapf(err, "decode body of %s", req.URL)
	}
	return body, nil
}

func (f *Fetcher) client(proxy string) *resty.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[proxy]; ok {
		return c
	}
	c := resty.New()
	if f.opts.UserAgent != "" {
		c.SetHeader("User-Agent", f.opts.UserAgent)
	}
	if proxy != "" {
		c.SetProxy(proxy)
	}
	f.clients[proxy] = c
	return c
}

func classify(rawURL string, err error) error {
	kind := errs.KindConnection
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = errs.KindTimeout
	}
	return &errs.HTTPError{Kind: kind, URL: rawURL, Err: err}
}

// decode converts body to UTF-8 using the declared or sniffed charset.
func decode(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"

	"f1stats/internal/shared/logger"
)

// DefaultTarget is a known-good page every working proxy can reach.
const DefaultTarget = "https://ya.ru"

// Validator health-checks a proxy with one live GET through it.
type Validator struct {
	target    string
	timeout   time.Duration
	userAgent string
}

// NewValidator checks against target (DefaultTarget if empty) with a per-check timeout.
func NewValidator(target string, timeout time.Duration, userAgent string) *Validator {
	if target == "" {
		target = DefaultTarget
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Validator{target: target, timeout: timeout, userAgent: userAgent}
}

// Target returns the URL that is fetched through each proxy.
func (v *Validator) Target() string { return v.target }

// Check returns nil when a GET of the target through proxyURL succeeds.
// Cancelling ctx returns ctx.Err() at once, even while the GET is in flight.
func (v *Validator) Check(ctx context.Context, proxyURL string) error {
	l := logger.WithComponent("ProxyPool/Validator")
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if v.userAgent != "" {
		opts = append(opts, colly.UserAgent(v.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(v.timeout)
	if err := c.SetProxy(proxyURL); err != nil {
		return eris.Wrapf(err, "set proxy %s", proxyURL)
	}

	var status int
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- c.Visit(v.target) }()

	// colly cannot abort a visit; a cancelled caller stops waiting and the
	// visit ends on its own request timeout
	select {
	case <-ctx.Done():
		l.Debug().Str("proxy", proxyURL).Msg("Health check cancelled.")
		return ctx.Err()
	case err := <-done:
		if err != nil {
			l.Debug().Err(err).Str("proxy", proxyURL).Int("status_code", status).Msg("Health check failed.")
			return fmt.Errorf("health check via %s: %w", proxyURL, err)
		}
	}

	l.Debug().Str("proxy", proxyURL).Dur("latency", time.Since(start)).Msg("Health check passed.")
	return nil
}

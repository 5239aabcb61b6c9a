package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"f1stats/internal/resilience"
	"f1stats/internal/shared/errs"
)

func fastPolicy() *resilience.Policy {
	p := resilience.DefaultPolicy()
	p.Delay = time.Millisecond
	return &p
}

func TestRequest_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty url", Request{Timeout: time.Second}, "url"},
		{"blank url", Request{URL: "  ", Timeout: time.Second}, "url"},
		{"zero timeout", Request{URL: "http://test1.com"}, "timeout"},
		{"bad proxy", Request{URL: "http://test1.com", Timeout: time.Second, Proxy: "http://[::1"}, "proxy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			var ce *errs.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.field, ce.Field)
		})
	}

	assert.NoError(t, Request{URL: "http://test1.com", Timeout: time.Second}.Validate())
}

func TestGet_InvalidRequestDoesNoIO(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	f := New(Options{Policy: fastPolicy()})
	_, err := f.Get(context.Background(), Request{URL: srv.URL})

	var ce *errs.ConfigurationError
	assert.True(t, errors.As(err, &ce))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFullURL(t *testing.T) {
	assert.Equal(t, "http://test1.com", FullURL(Request{URL: "http://test1.com/"}))
	assert.Equal(t, "http://test1.com/path?page=1&q=query+string",
		FullURL(Request{URL: "http://test1.com/path/", Params: map[string]string{"q": "query string", "page": "1"}}))
}

func TestGet_ParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("test"))
		assert.Equal(t, "test bot", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("test1"))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "default agent", Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{
		URL:     srv.URL,
		Timeout: time.Second,
		Params:  map[string]string{"test": "1"},
		Headers: map[string]string{"User-Agent": "test bot"},
	})

	require.NoError(t, err)
	assert.Equal(t, "test1", body)
}

func TestGet_DefaultUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "f1stats", Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "f1stats", body)
}

func TestGet_ThroughProxy(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a forward proxy receives the absolute target URL
		_, _ = w.Write([]byte("proxied " + r.URL.Host))
	}))
	defer proxy.Close()

	f := New(Options{Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{
		URL:     "http://f1news.invalid/",
		Timeout: time.Second,
		Proxy:   proxy.URL,
	})

	require.NoError(t, err)
	assert.Equal(t, "proxied f1news.invalid", body)
}

func TestGet_ProxyIgnoredForOtherScheme(t *testing.T) {
	var proxied int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxied, 1)
	}))
	defer proxy.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("direct"))
	}))
	defer srv.Close()

	f := New(Options{Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second, Proxy: proxy.URL, Secure: true})

	require.NoError(t, err)
	assert.Equal(t, "direct", body)
	assert.Zero(t, atomic.LoadInt32(&proxied))
}

func TestGet_StatusErrorIsRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Options{Policy: fastPolicy()})
	_, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second})

	var he *errs.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, errs.KindStatus, he.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestGet_RecoversAfterTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(Options{Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := fastPolicy()
	p.Tries = 1
	f := New(Options{Policy: p})
	_, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: 50 * time.Millisecond})

	var he *errs.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, errs.KindTimeout, he.Kind)
	assert.True(t, errs.IsConnectionFailure(err))
}

func TestGet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	p := fastPolicy()
	p.Tries = 2
	f := New(Options{Policy: p})
	_, err := f.Get(context.Background(), Request{URL: addr, Timeout: time.Second})

	var he *errs.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, errs.KindConnection, he.Kind)
}

func TestGet_DecodesWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("<p>Хэмилтон</p>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	f := New(Options{Policy: fastPolicy()})
	body, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "<p>Хэмилтон</p>", body)
}

func TestGet_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(Options{RateLimit: 20, Policy: fastPolicy()})
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Get(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
		require.NoError(t, err)
	}
	// burst of one, then one token every 50ms
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

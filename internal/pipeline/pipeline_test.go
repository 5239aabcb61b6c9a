package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/cache"
	"f1stats/internal/scraper"
	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/types"
)

type countingScraper struct {
	calls int
	body  string
	err   error
}

func (s *countingScraper) Scrape(_ context.Context, uri string, _, _ map[string]string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.body + uri, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := &countingScraper{}
	r.Register("f1news.ru", s)

	got, err := r.Lookup("f1news.ru")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, []string{"f1news.ru"}, r.Sites())

	_, err = r.Lookup("autosport.com")
	var ce *errs.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "site", ce.Field)
}

func TestScrapeData_Memoized(t *testing.T) {
	root := t.TempDir()
	c, err := cache.New(root, ScrapedDataPrefix)
	require.NoError(t, err)

	s := &countingScraper{body: "<html>"}
	r := NewRegistry()
	r.Register("f1news.ru", s)
	p := New(r, cache.NewMemo(c), "f1news.ru")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := p.ScrapeData(ctx, "f1news.ru", "Championship/2016/teampoints.shtml", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "<html>Championship/2016/teampoints.shtml", got)
	}
	assert.Equal(t, 1, s.calls)

	_, err = p.ScrapeData(ctx, "f1news.ru", "Championship/2017/teampoints.shtml", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)

	entries, err := os.ReadDir(filepath.Join(root, "cache", ScrapedDataPrefix))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestScrapeData_FailuresAreNotCached(t *testing.T) {
	c, err := cache.New(t.TempDir(), ScrapedDataPrefix)
	require.NoError(t, err)

	s := &countingScraper{err: &errs.ProxyScraperError{}}
	r := NewRegistry()
	r.Register("f1news.ru", s)
	p := New(r, cache.NewMemo(c), "f1news.ru")

	for i := 0; i < 2; i++ {
		_, err := p.ScrapeData(context.Background(), "f1news.ru", "x", nil, nil)
		var pse *errs.ProxyScraperError
		assert.True(t, errors.As(err, &pse))
	}
	assert.Equal(t, 2, s.calls)
}

func TestScrapeData_UnknownSite(t *testing.T) {
	p := New(NewRegistry(), nil, "f1news.ru")
	_, err := p.ScrapeData(context.Background(), "f1news.ru", "x", nil, nil)
	var ce *errs.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func testConfig(t *testing.T) *types.Config {
	cfg := types.DefaultConfig()
	cfg.StorageConf.Path = t.TempDir()
	return cfg
}

func TestBuild_Direct(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProxyConf.Enabled = false

	p, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "f1news.ru", p.Site())

	s, err := p.Registry().Lookup("f1news.ru")
	require.NoError(t, err)
	plain, ok := s.(*scraper.Scraper)
	require.True(t, ok)
	assert.Equal(t, "https://f1news.ru/championship/2016", plain.URL("/Championship/2016/"))
	assert.True(t, p.memo.Enabled())
}

func TestBuild_WithProxyPool(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScrapeConf.Cache = false

	p, err := Build(cfg)
	require.NoError(t, err)

	s, err := p.Registry().Lookup("f1news.ru")
	require.NoError(t, err)
	ps, ok := s.(*scraper.ProxyScraper)
	require.True(t, ok)
	assert.Equal(t, 10, ps.Retries())
	assert.False(t, p.memo.Enabled())
}

func TestBuild_BadProtocol(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScrapeConf.Protocol = "ftp"

	_, err := Build(cfg)
	var ce *errs.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestMemoizedScraper_KeyIgnoresReceiver(t *testing.T) {
	c, err := cache.New(t.TempDir(), ProxyCatalogPrefix)
	require.NoError(t, err)
	memo := cache.NewMemo(c)

	s1, err := scraper.New("www.ip-adress.com", scraper.Options{Protocol: "https"})
	require.NoError(t, err)
	s2, err := scraper.New("https://WWW.ip-adress.com/", scraper.Options{Protocol: "https"})
	require.NoError(t, err)

	// same host and request give the same key whatever the wrapper instance
	k1, ok1 := cache.MethodKey(&memoizedScraper{memo: memo, scraper: s1}, s1.Host(), "proxy-list", map[string]string(nil), map[string]string(nil))
	k2, ok2 := cache.MethodKey(&memoizedScraper{memo: memo, scraper: s2}, s2.Host(), "proxy-list", map[string]string(nil), map[string]string(nil))
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, k1, k2)
}

package proxypool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/shared/errs"
	"f1stats/proxypool/model"
	"f1stats/proxypool/validator"
)

type fakeSource struct {
	html  string
	err   error
	calls int
	uris  []string
}

func (s *fakeSource) Scrape(_ context.Context, uri string, _, _ map[string]string) (string, error) {
	s.calls++
	s.uris = append(s.uris, uri)
	return s.html, s.err
}

type fakeChecker struct {
	alive   map[string]bool
	checked []string
}

func (c *fakeChecker) Check(_ context.Context, proxyURL string) error {
	c.checked = append(c.checked, proxyURL)
	if c.alive[proxyURL] {
		return nil
	}
	return errors.New("connection refused")
}

func catalogHTML(entries ...string) string {
	var b strings.Builder
	b.WriteString(`<table class="proxylist"><thead><tr><th>IP</th></tr></thead><tbody>`)
	for _, e := range entries {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>elite</td></tr>", e)
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func TestGetProxy_FirstHealthyInPageOrder(t *testing.T) {
	src := &fakeSource{html: catalogHTML("1.1.1.1:80", "2.2.2.2:8080", "3.3.3.3:3128")}
	chk := &fakeChecker{alive: map[string]bool{"http://2.2.2.2:8080": true, "http://3.3.3.3:3128": true}}
	m := NewManager(src, chk, "")

	got, err := m.GetProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://2.2.2.2:8080", got)
	assert.Equal(t, []string{"http://1.1.1.1:80", "http://2.2.2.2:8080"}, chk.checked, "validation stops at first success")
	assert.Equal(t, []string{DefaultCatalogPath}, src.uris)
	assert.Equal(t, model.Rejected, m.State("http://1.1.1.1:80"))
	assert.Equal(t, model.Active, m.State("http://2.2.2.2:8080"))
	assert.Equal(t, model.Discovered, m.State("http://3.3.3.3:3128"))

	c, ok := m.Candidate("http://2.2.2.2:8080")
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", c.IP)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, model.Active, c.State)
	assert.False(t, c.LastChecked.IsZero())

	_, ok = m.Candidate("http://3.3.3.3:3128")
	assert.False(t, ok)
}

func TestGetProxy_SkipsExcluded(t *testing.T) {
	src := &fakeSource{html: catalogHTML("1.1.1.1:80", "2.2.2.2:8080")}
	chk := &fakeChecker{alive: map[string]bool{"http://1.1.1.1:80": true, "http://2.2.2.2:8080": true}}
	m := NewManager(src, chk, "proxy-list")

	m.ForgetProxy("http://1.1.1.1:80")
	got, err := m.GetProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://2.2.2.2:8080", got)
	assert.NotContains(t, chk.checked, "http://1.1.1.1:80")
	assert.Equal(t, []string{"http://1.1.1.1:80"}, m.Excluded())
	assert.Equal(t, model.Excluded, m.State("http://1.1.1.1:80"))
}

func TestGetProxy_NoneWorking(t *testing.T) {
	src := &fakeSource{html: catalogHTML("1.1.1.1:80", "not-a-proxy", "2.2.2.2:8080")}
	m := NewManager(src, &fakeChecker{}, "")

	got, err := m.GetProxy(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	m.ForgetProxy("http://1.1.1.1:80")
	m.ForgetProxy("http://2.2.2.2:8080")
	got, err = m.GetProxy(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetProxy_CatalogErrorsPropagate(t *testing.T) {
	fetchErr := &errs.HTTPError{Kind: errs.KindConnection, URL: "https://www.ip-adress.com/proxy-list"}
	m := NewManager(&fakeSource{err: fetchErr}, &fakeChecker{}, "")
	_, err := m.GetProxy(context.Background())
	assert.True(t, errs.IsHTTPError(err))

	m = NewManager(&fakeSource{html: "<html></html>"}, &fakeChecker{}, "")
	_, err = m.GetProxy(context.Background())
	var me *errs.MalformedPageError
	assert.True(t, errors.As(err, &me))
}

func TestGetProxy_WithColly(t *testing.T) {
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer alive.Close()
	dead := httptest.NewServer(http.NotFoundHandler())
	deadAddr := strings.TrimPrefix(dead.URL, "http://")
	dead.Close()

	aliveAddr := strings.TrimPrefix(alive.URL, "http://")
	src := &fakeSource{html: catalogHTML(deadAddr, aliveAddr)}
	m := NewManager(src, validator.NewValidator("http://check.invalid/", time.Second, ""), "")

	got, err := m.GetProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alive.URL, got)
	assert.Equal(t, model.Rejected, m.State(dead.URL))
}

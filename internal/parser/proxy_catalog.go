package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// ProxyCatalog parses the public proxy list page.
type ProxyCatalog struct {
	doc *goquery.Document
}

// NewProxyCatalog parses html.
func NewProxyCatalog(html string) (*ProxyCatalog, error) {
	doc, err := load("ProxyCatalog", html)
	if err != nil {
		return nil, err
	}
	return &ProxyCatalog{doc: doc}, nil
}

// ProxyIPs returns the "ip:port" cells in page order.
func (p *ProxyCatalog) ProxyIPs() ([]string, error) {
	table := p.doc.Find("table.proxylist").First()
	if table.Length() == 0 {
		return nil, malformed("ProxyCatalog", "ProxyIPs", "table.proxylist")
	}

	var ips []string
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if ip := clean(tr.Find("td").First().Text()); ip != "" {
			ips = append(ips, ip)
		}
	})
	return ips, nil
}

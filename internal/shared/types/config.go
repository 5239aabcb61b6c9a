package types

// StorageConf 存储相关配置
type StorageConf struct {
	Path string `ini:"path"` // storage root; cache lives under <path>/cache, CSV files directly under <path>
}

// ScrapeConf controls how pages of the news site are fetched.
type ScrapeConf struct {
	Site      string  `ini:"site"`
	Protocol  string  `ini:"protocol"`
	Timeout   int     `ini:"timeout"`    // seconds, per HTTP call
	RateLimit float64 `ini:"rate_limit"` // requests per second, 0 means unlimited
	UserAgent string  `ini:"user_agent"`
	Cache     bool    `ini:"cache"`
}

// ProxyConf controls routing scrapes through the public proxy pool.
type ProxyConf struct {
	Enabled         bool   `ini:"enabled"`
	CatalogProtocol string `ini:"catalog_protocol"`
	CatalogDomain   string `ini:"catalog_domain"`
	CatalogPath     string `ini:"catalog_path"`
	CheckURL        string `ini:"check_url"`
	CheckTimeout    int    `ini:"check_timeout"` // seconds
	Timeout         int    `ini:"timeout"`       // seconds, per scrape through a proxy
	Retries         int    `ini:"retries"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config 是 f1stats 的统一配置结构体
type Config struct {
	StorageConf `ini:"storage"`
	ScrapeConf  `ini:"scrape"`
	ProxyConf   `ini:"proxy"`
	LogConf     `ini:"log"`
}

// DefaultConfig returns the settings used when no ini file is present.
func DefaultConfig() *Config {
	return &Config{
		StorageConf: StorageConf{
			Path: "storage",
		},
		ScrapeConf: ScrapeConf{
			Site:      "f1news.ru",
			Protocol:  "https",
			Timeout:   3,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
			Cache:     true,
		},
		ProxyConf: ProxyConf{
			Enabled:         true,
			CatalogProtocol: "https",
			CatalogDomain:   "www.ip-adress.com",
			CatalogPath:     "proxy-list",
			CheckURL:        "https://ya.ru",
			CheckTimeout:    10,
			Timeout:         10,
			Retries:         10,
		},
		LogConf: LogConf{
			Level: "info",
		},
	}
}

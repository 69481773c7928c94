package config

// SiteConfig holds site-specific configuration for a single audited host.
// This allows customizing crawl behavior per site without repeating CLI
// flags on every run.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2".
	// Useful for auditing staging sites behind a simple cookie wall.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// DelayMillis overrides the global crawl delay, in milliseconds.
	// If zero, the global CrawlDelay is used.
	DelayMillis int `yaml:"delayMillis,omitempty"`

	// BusinessName overrides the report header name for this site.
	BusinessName string `yaml:"businessName,omitempty"`
}

// File represents the structure of the .seoaudit configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys should be the bare host (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.DelayMillis != 0 {
			result.DelayMillis = siteConfig.DelayMillis
		}
		if siteConfig.BusinessName != "" {
			result.BusinessName = siteConfig.BusinessName
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

package config

// SiteConfig holds per-domain overrides for a single host.
// This allows customizing crawl behavior for individual sites, e.g.
// sites behind a login cookie or sites whose contact page hides behind
// unusual path names.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Keywords overrides the global priority keywords for this site.
	Keywords []string `yaml:"keywords,omitempty"`

	// MaxPages overrides the global per-domain page budget for this site.
	// If zero, the global MaxPagesPerDomain is used.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// File represents the structure of the .mailspider configuration file.
type File struct {
	// Seeds are start URLs loaded from the config file; they are merged
	// with seeds given on the command line.
	Seeds []string `yaml:"seeds,omitempty"`

	// Keywords are the global priority URL keywords, in rank order.
	Keywords []string `yaml:"keywords,omitempty"`

	// Sites maps domains to their site-specific configurations.
	// Keys are hosts without the scheme (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if len(siteConfig.Keywords) > 0 {
			result.Keywords = siteConfig.Keywords
		}
		if len(siteConfig.Headers) > 0 {
			// Copy before merging so the shared defaults map stays untouched
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}

// RequestHeaders flattens a SiteConfig into the extra HTTP headers to
// send for the site, folding the cookie into a Cookie header.
func (sc SiteConfig) RequestHeaders() map[string]string {
	if sc.Cookie == "" && len(sc.Headers) == 0 {
		return nil
	}

	headers := make(map[string]string, len(sc.Headers)+1)
	for k, v := range sc.Headers {
		headers[k] = v
	}
	if sc.Cookie != "" {
		headers["Cookie"] = sc.Cookie
	}
	return headers
}

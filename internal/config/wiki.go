package config

import "time"

// WikiConfig holds per-wiki overrides for a single wiki instance.
// This lets the same binary harvest noticeboards on wikis other than
// English Wikipedia without new flags for every run.
type WikiConfig struct {
	// BaseURL overrides the wiki base URL.
	BaseURL string `yaml:"baseURL,omitempty"`

	// APIURL overrides the content API endpoint.
	APIURL string `yaml:"apiURL,omitempty"`

	// Prefix overrides the reference title prefix (e.g. "Diskussion:"
	// on German Wikipedia).
	Prefix string `yaml:"prefix,omitempty"`

	// ArchiveMarker overrides the archive link marker.
	ArchiveMarker string `yaml:"archiveMarker,omitempty"`

	// UserAgent overrides the request User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Delay overrides the politeness delay between requests.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Retries overrides the per-fetch attempt budget.
	Retries int `yaml:"retries,omitempty"`
}

// File represents the structure of the .wikiharvest configuration file.
type File struct {
	// Wikis maps a wiki name (the key used with --wiki, not the URL) to
	// its overrides.
	Wikis map[string]WikiConfig `yaml:"wikis,omitempty"`

	// Defaults contains overrides applied to every run before any
	// wiki-specific section.
	Defaults WikiConfig `yaml:"defaults,omitempty"`
}

// GetWikiConfig returns the merged configuration for a named wiki:
// file-level defaults overlaid with the wiki's own section.
func (cf *File) GetWikiConfig(name string) WikiConfig {
	result := cf.Defaults

	if wc, ok := cf.Wikis[name]; ok {
		if wc.BaseURL != "" {
			result.BaseURL = wc.BaseURL
		}
		if wc.APIURL != "" {
			result.APIURL = wc.APIURL
		}
		if wc.Prefix != "" {
			result.Prefix = wc.Prefix
		}
		if wc.ArchiveMarker != "" {
			result.ArchiveMarker = wc.ArchiveMarker
		}
		if wc.UserAgent != "" {
			result.UserAgent = wc.UserAgent
		}
		if wc.Delay > 0 {
			result.Delay = wc.Delay
		}
		if wc.Retries > 0 {
			result.Retries = wc.Retries
		}
	}

	return result
}

package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The network-facing defaults follow Wikipedia's bot policy: an
// identifying User-Agent, a one second gap between requests, and a
// bounded retry budget.
const (
	// DefaultBaseURL is the wiki the noticeboard lives on. Seed and
	// archive documents are fetched as <base>/wiki/<title>.
	DefaultBaseURL = "https://en.wikipedia.org"

	// DefaultAPIURL is the MediaWiki action API endpoint used to
	// resolve page titles into wikitext.
	DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

	// DefaultSeed is the noticeboard page the crawl starts from.
	DefaultSeed = "Wikipedia:Dispute_resolution_noticeboard"

	// DefaultPrefix selects which outbound links count as references:
	// pages in the Talk namespace.
	DefaultPrefix = "Talk:"

	// DefaultArchiveMarker identifies archive pages of the noticeboard.
	// A link is an archive link when its href contains both this marker
	// and the word "Archive".
	DefaultArchiveMarker = "Dispute_resolution_noticeboard"

	// DefaultTimeout is the per-attempt HTTP timeout. 30 seconds is
	// generous for Wikipedia but keeps a stuck connection from stalling
	// the whole run.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of attempts per logical fetch.
	DefaultRetries = 3

	// DefaultDelay is the politeness delay between distinct requests.
	DefaultDelay = 1 * time.Second

	// DefaultBackoff is the base for linear retry backoff: the sleep
	// before attempt n+1 is DefaultBackoff * n.
	DefaultBackoff = 2 * time.Second

	// DefaultUserAgent identifies wikiharvest in HTTP requests, as
	// required by the Wikimedia User-Agent policy.
	DefaultUserAgent = "wikiharvest/1.0 (+https://github.com/taym/wikiharvest)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// Noticeboard archives are large HTML documents; 10MB covers them
	// with ample headroom while bounding memory use.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "wikiharvest"
)

// Config holds all run parameters for a harvest.
// It is populated from CLI flags (and optionally a config file) and
// passed through the application by dependency injection; there is no
// global configuration state.
type Config struct {
	// BaseURL is the wiki base, without a trailing slash. Seed and
	// archive documents are fetched from <BaseURL>/wiki/<title>.
	BaseURL string

	// APIURL is the MediaWiki action API endpoint.
	APIURL string

	// Seed is the noticeboard page title the crawl starts from.
	Seed string

	// Prefix is the title prefix a link target must carry to count as a
	// reference (e.g. "Talk:").
	Prefix string

	// ArchiveMarker is the substring an href must contain, together
	// with "Archive", to be treated as an archive page of the seed.
	ArchiveMarker string

	// Timeout is the per-attempt HTTP timeout.
	Timeout time.Duration

	// Retries is the maximum number of attempts per logical fetch.
	Retries int

	// Delay is the politeness delay between distinct outbound requests.
	// It is not applied between retry attempts of the same fetch; those
	// use the backoff schedule instead.
	Delay time.Duration

	// Backoff is the base for linear retry backoff.
	Backoff time.Duration

	// UserAgent is sent with every outbound request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Output is the path records are written to. Empty means stdout.
	Output string

	// Input is the link JSONL path consumed by the resolve command.
	Input string

	// SummaryFile, when set, is where the markdown run summary is
	// written after the harvest completes.
	SummaryFile string

	// SaveToDB enables archiving emitted records into the local SQLite
	// database under DBDir.
	SaveToDB bool

	// DBDir is the directory holding the SQLite database. Defaults to
	// the XDG data directory.
	DBDir string

	// ConfigFilePath is an explicit config file path. Empty means
	// search the usual locations.
	ConfigFilePath string

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONLog switches log output from text to JSON.
	JSONLog bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because nearly every default is non-zero, and the constructor
// doubles as documentation of what those defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		APIURL:        DefaultAPIURL,
		Seed:          DefaultSeed,
		Prefix:        DefaultPrefix,
		ArchiveMarker: DefaultArchiveMarker,
		Timeout:       DefaultTimeout,
		Retries:       DefaultRetries,
		Delay:         DefaultDelay,
		Backoff:       DefaultBackoff,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for wikiharvest.
// On Linux: ~/.local/share/wikiharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikiharvest.
// On Linux: ~/.config/wikiharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid. It returns the first
// problem found as a sentinel error usable with errors.Is.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.APIURL == "" {
		return ErrNoAPIURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Retries <= 0 {
		return ErrInvalidRetries
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Backoff < 0 {
		return ErrInvalidBackoff
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// ApplyWiki overlays a per-wiki override from the config file onto the
// run configuration. Only fields the override actually sets are copied.
func (c *Config) ApplyWiki(w WikiConfig) {
	if w.BaseURL != "" {
		c.BaseURL = w.BaseURL
	}
	if w.APIURL != "" {
		c.APIURL = w.APIURL
	}
	if w.Prefix != "" {
		c.Prefix = w.Prefix
	}
	if w.ArchiveMarker != "" {
		c.ArchiveMarker = w.ArchiveMarker
	}
	if w.UserAgent != "" {
		c.UserAgent = w.UserAgent
	}
	if w.Delay > 0 {
		c.Delay = w.Delay
	}
	if w.Retries > 0 {
		c.Retries = w.Retries
	}
}

package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate() and identify exactly which
// run parameter is unusable.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoSeed is returned when no seed page title is configured.
	// Without a seed there is nothing to discover from.
	ErrNoSeed = errors.New("no seed page: provide a noticeboard title as argument or via config")

	// ErrNoBaseURL is returned when the wiki base URL is empty.
	ErrNoBaseURL = errors.New("no base URL: the wiki base URL must be set")

	// ErrNoAPIURL is returned when the content API endpoint is empty.
	ErrNoAPIURL = errors.New("no API URL: the MediaWiki api.php endpoint must be set")

	// ErrInvalidTimeout is returned when the per-attempt timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry budget is not
	// positive. At least one attempt is required per fetch.
	ErrInvalidRetries = errors.New("invalid retries: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is
	// negative. Use 0 to disable the delay.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidBackoff is returned when the backoff base is negative.
	ErrInvalidBackoff = errors.New("invalid backoff: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

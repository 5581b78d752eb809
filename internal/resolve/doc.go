// Package resolve implements the resolution stage of the harvest:
// turning page titles into full wikitext through the MediaWiki action
// API.
//
// A Resolver owns a per-run cache keyed on title. The first lookup of a
// title performs one API request; every later lookup, including one
// that found the page missing, is answered from the cache without
// network access. The cache is never evicted or updated within a run.
//
// Design decision: "Page missing" is cached like a successful
// resolution, while a transport failure is not cached at all. A missing
// page is a definitive answer from the provider; a transport failure is
// not, and a later link to the same page deserves a fresh try.
package resolve

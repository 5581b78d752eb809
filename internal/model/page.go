package model

import "time"

// ResolvedPage is the outcome of resolving one page title against the
// content API. Instances are created once per distinct title and cached
// for the lifetime of the run; they are never updated or evicted.
//
// Design decision: We represent "the page does not exist" as a
// ResolvedPage with a nil Text rather than an error or a missing cache
// entry. A missing page is a normal, cacheable answer — treating it as
// an error would force the resolver to re-fetch it for every link that
// points at it.
type ResolvedPage struct {
	// Title is the normalized page title, unique per run.
	Title string `json:"title"`

	// Text is the full wikitext of the page's latest revision, or nil
	// when the provider reported the page missing or without revisions.
	Text *string `json:"text"`

	// RevisionTimestamp is the provider-reported timestamp of the
	// revision the text was taken from. Empty when Text is nil.
	RevisionTimestamp string `json:"revision_timestamp,omitempty"`

	// ResolvedAt is the wall-clock time the resolution completed.
	ResolvedAt time.Time `json:"resolved_at"`
}

// Absent reports whether the page resolved to nothing (missing page or
// no revisions).
func (p *ResolvedPage) Absent() bool {
	return p.Text == nil
}

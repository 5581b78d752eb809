package model

import "errors"

// SeedSource is the sentinel source context for links discovered on the
// seed noticeboard page itself, as opposed to one of its archives.
const SeedSource = "seed"

// ErrEmptyTarget is returned by Validate when a link has no target title.
var ErrEmptyTarget = errors.New("reference link has empty target title")

// ReferenceLink is one discovered pointer into a talk page.
//
// Links are many-to-one with pages: several anchors on the noticeboard
// may point into different sections of the same talk page. Each link is
// kept separately so that the join stage can emit one record per link
// while resolving the backing page only once.
type ReferenceLink struct {
	// Source identifies the page the link was found on: SeedSource for
	// the noticeboard itself, or the archive page title.
	Source string `json:"source"`

	// Target is the normalized title of the linked page (decoded, with
	// the wiki base path and fragment stripped). Never empty.
	Target string `json:"target"`

	// Anchor is the decoded fragment pointing into a section of the
	// target page. Empty means the link had no fragment.
	Anchor string `json:"anchor,omitempty"`

	// Order is a monotonic sequence number assigned at extraction time.
	// It defines the stable output ordering within a run.
	Order int `json:"order"`
}

// Validate checks the link invariants.
func (l *ReferenceLink) Validate() error {
	if l.Target == "" {
		return ErrEmptyTarget
	}
	return nil
}

// Key returns the deduplication key for the link. Two links are
// duplicates only if both title and anchor match; the same page linked
// under two different anchors is two distinct references.
func (l *ReferenceLink) Key() string {
	if l.Anchor == "" {
		return l.Target
	}
	return l.Target + "#" + l.Anchor
}

package model

import "time"

// OutputRecord is the join of a ReferenceLink with its ResolvedPage.
// One record is emitted per link, not per distinct page: three links
// into the same talk page produce three records sharing one resolution.
//
// The JSON field names define the on-disk JSONL format and must stay
// stable; downstream analysis keys on them.
type OutputRecord struct {
	// Source is the page the link was discovered on (SeedSource or an
	// archive title).
	Source string `json:"source"`

	// Title is the normalized target page title.
	Title string `json:"title"`

	// Anchor is the decoded section fragment, omitted when the link had
	// none.
	Anchor string `json:"anchor,omitempty"`

	// Wikitext is the full source text of the target page's latest
	// revision.
	Wikitext string `json:"wikitext"`

	// RevisionTimestamp is the provider-reported revision timestamp.
	RevisionTimestamp string `json:"revision_timestamp,omitempty"`

	// FetchedAt is the emission timestamp, set when the record is
	// written.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewOutputRecord joins a link with its resolved page. The caller must
// ensure the page is present (non-nil Text); joining an absent page is a
// programming error and yields an empty Wikitext.
func NewOutputRecord(link ReferenceLink, page *ResolvedPage, fetchedAt time.Time) OutputRecord {
	rec := OutputRecord{
		Source:            link.Source,
		Title:             link.Target,
		Anchor:            link.Anchor,
		RevisionTimestamp: page.RevisionTimestamp,
		FetchedAt:         fetchedAt,
	}
	if page.Text != nil {
		rec.Wikitext = *page.Text
	}
	return rec
}

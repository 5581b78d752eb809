// Package wiki implements the discovery stage of the harvest: parsing
// noticeboard documents for links into a target namespace, enumerating
// archive pages, and driving extraction across all of them.
//
// # Components
//
//   - title.go: normalization of hrefs into canonical page titles and
//     anchors. A pure function boundary with no network access.
//   - Extractor: parses a document's link structure with
//     golang.org/x/net/html and returns the ordered, deduplicated set
//     of reference targets or archive titles.
//   - Paginator: fetches the seed document and each archive document,
//     runs the Extractor across them, and streams ReferenceLinks to a
//     caller-supplied emit function.
//
// Archive discovery is bounded by construction: archive titles are
// enumerated once from the seed document and never crawled recursively,
// so no cycle detection is needed.
//
// Design decision: We parse with golang.org/x/net/html rather than
// regex because noticeboard pages are large, machine-generated HTML
// with plenty of markup a regex would trip over, and the parser
// tolerates malformed fragments the same way browsers do.
package wiki

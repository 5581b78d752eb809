package wiki

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// wikiPathPrefix is the article path prefix under the wiki base URL.
const wikiPathPrefix = "/wiki/"

// Normalization errors. These never surface past the extractor: a link
// that fails to normalize is simply not a reference.
var (
	// ErrNotWikiPath is returned for hrefs outside the /wiki/ article
	// path (API links, external links, special pages addressed via
	// index.php).
	ErrNotWikiPath = errors.New("href is not a wiki article path")

	// ErrForeignHost is returned when an absolute href points at a
	// different host than the configured wiki base.
	ErrForeignHost = errors.New("href points at a foreign host")

	// ErrEmptyTitle is returned when the path decodes to nothing,
	// e.g. a bare link to /wiki/.
	ErrEmptyTitle = errors.New("href has an empty title")
)

// Target is a normalized link destination: a page title plus an
// optional section anchor.
type Target struct {
	// Title is the canonical page title, percent-decoded and
	// NFC-normalized, with the base path stripped. Underscores are kept
	// as they appear in the URL; the content API accepts either form.
	Title string

	// Anchor is the decoded fragment, empty when the link had none.
	Anchor string
}

// Key returns the deduplication key for the target.
func (t Target) Key() string {
	if t.Anchor == "" {
		return t.Title
	}
	return t.Title + "#" + t.Anchor
}

// NormalizeTarget resolves href against base and normalizes it into a
// Target.
//
// This is the pure boundary the rest of discovery is built on: decoding
// of percent-escapes, Unicode NFC normalization, stripping of scheme,
// host and the /wiki/ base path, and splitting of the fragment all
// happen here and nowhere else.
func NormalizeTarget(href string, base *url.URL) (Target, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return Target{}, ErrNotWikiPath
	}

	u, err := url.Parse(href)
	if err != nil {
		return Target{}, err
	}
	resolved := base.ResolveReference(u)

	// Absolute links to other hosts are not references into this wiki,
	// even when their path looks like one.
	if !strings.EqualFold(resolved.Host, base.Host) {
		return Target{}, ErrForeignHost
	}

	if !strings.HasPrefix(resolved.Path, wikiPathPrefix) {
		return Target{}, ErrNotWikiPath
	}

	// url.Parse already percent-decodes Path and Fragment.
	title := strings.TrimPrefix(resolved.Path, wikiPathPrefix)
	if title == "" {
		return Target{}, ErrEmptyTitle
	}

	return Target{
		Title:  norm.NFC.String(title),
		Anchor: norm.NFC.String(resolved.Fragment),
	}, nil
}

// PageURL builds the document URL for a page title, the inverse of the
// stripping NormalizeTarget performs. The title is placed in the URL
// path so that reserved characters are escaped correctly.
func PageURL(base *url.URL, title string) string {
	ref := &url.URL{Path: wikiPathPrefix + title}
	return base.ResolveReference(ref).String()
}

package wiki

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// archiveWord is the second substring an href must contain, together
// with the configured marker, to count as an archive page link.
const archiveWord = "Archive"

// Extractor parses a document's link structure against a fixed wiki
// base. It performs no fetching itself; it is a pure transformation
// from document to target set.
type Extractor struct {
	// base is the wiki base URL relative hrefs resolve against.
	base *url.URL
}

// NewExtractor creates an Extractor for the given wiki base URL.
func NewExtractor(base *url.URL) *Extractor {
	return &Extractor{base: base}
}

// References returns the targets of all links whose normalized title
// carries the given prefix, deduplicated, in order of first occurrence.
//
// Duplicate detection keys on title plus anchor: two links into
// different sections of the same page are two distinct references.
// Hrefs that fail to normalize (malformed, foreign host, outside the
// article path) are dropped silently; a link extractor has to tolerate
// arbitrary third-party markup.
func (e *Extractor) References(r io.Reader, prefix string) ([]Target, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	targets := make([]Target, 0)

	walkAnchors(doc, func(href string) {
		target, err := NormalizeTarget(href, e.base)
		if err != nil {
			return
		}
		if !strings.HasPrefix(target.Title, prefix) {
			return
		}
		if key := target.Key(); !seen[key] {
			seen[key] = true
			targets = append(targets, target)
		}
	})

	return targets, nil
}

// Archives returns the titles of archive pages linked from the
// document: links whose href contains both the noticeboard marker and
// the word "Archive". Deduplicated by title (anchors into an archive
// page are irrelevant for crawling it), in order of first occurrence.
func (e *Extractor) Archives(r io.Reader, marker string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	titles := make([]string, 0)

	walkAnchors(doc, func(href string) {
		if !strings.Contains(href, marker) || !strings.Contains(href, archiveWord) {
			return
		}
		target, err := NormalizeTarget(href, e.base)
		if err != nil {
			return
		}
		if !seen[target.Title] {
			seen[target.Title] = true
			titles = append(titles, target.Title)
		}
	})

	return titles, nil
}

// walkAnchors walks the DOM tree and calls fn with the href of every
// anchor element that has one.
func walkAnchors(n *html.Node, fn func(href string)) {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				fn(attr.Val)
				break
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkAnchors(c, fn)
	}
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// Summary aggregates the outcome of one harvest run for the optional
// markdown report.
type Summary struct {
	// Seed is the noticeboard page the run started from.
	Seed string

	// Started and Finished bound the run.
	Started  time.Time
	Finished time.Time

	// Links is the total number of references discovered.
	Links int

	// Records is the number of output records emitted.
	Records int

	// Resolutions is the number of distinct pages resolved over the
	// network, absent outcomes included.
	Resolutions int

	// CacheHits is the number of lookups answered from the cache.
	CacheHits int

	// AbsentPages is the number of pages the provider reported missing.
	AbsentPages int

	// FailedResolutions is the number of identifiers dropped after
	// their resolution exhausted its retries.
	FailedResolutions int

	// Archives and ArchivesSkipped count archive pages crawled and
	// skipped.
	Archives        int
	ArchivesSkipped int

	// LinksBySource maps each source context to its link count.
	LinksBySource map[string]int
}

// Duration returns the run's wall-clock duration.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// MarkdownSummary writes a run summary as GitHub-flavored markdown.
type MarkdownSummary struct {
	// output receives the generated document.
	output io.Writer
}

// NewMarkdownSummary creates a MarkdownSummary writing to output.
func NewMarkdownSummary(output io.Writer) *MarkdownSummary {
	return &MarkdownSummary{output: output}
}

// Write renders the summary document.
func (w *MarkdownSummary) Write(s *Summary) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Harvest Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + s.Seed + "`"},
			{"Started", s.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration().Round(time.Second).String()},
			{"Links discovered", strconv.Itoa(s.Links)},
			{"Records written", strconv.Itoa(s.Records)},
			{"Distinct resolutions", strconv.Itoa(s.Resolutions)},
			{"Cache hits", strconv.Itoa(s.CacheHits)},
			{"Absent pages", strconv.Itoa(s.AbsentPages)},
			{"Failed resolutions", strconv.Itoa(s.FailedResolutions)},
			{"Archives crawled", strconv.Itoa(s.Archives)},
			{"Archives skipped", strconv.Itoa(s.ArchivesSkipped)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, s)
	w.writeSources(md, s)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by wikiharvest*")

	return md.Build()
}

// writeAlert adds a GitHub alert reflecting how clean the run was.
func (w *MarkdownSummary) writeAlert(md *markdown.Markdown, s *Summary) {
	switch {
	case s.ArchivesSkipped > 0 || s.FailedResolutions > 0:
		md.Warningf(
			"Incomplete harvest: %d archive(s) skipped, %d resolution(s) failed. Re-run to retry.",
			s.ArchivesSkipped, s.FailedResolutions,
		)
	case s.AbsentPages > 0:
		md.Note(fmt.Sprintf("%d referenced page(s) no longer exist and were dropped.", s.AbsentPages))
	default:
		md.Tip("Every discovered reference was resolved.")
	}
	md.PlainText("")
}

// writeSources adds the per-source link count table.
func (w *MarkdownSummary) writeSources(md *markdown.Markdown, s *Summary) {
	if len(s.LinksBySource) == 0 {
		return
	}

	md.H2("Links by Source")
	md.PlainText("")

	sources := make([]string, 0, len(s.LinksBySource))
	for source := range s.LinksBySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	rows := make([][]string, 0, len(sources))
	for _, source := range sources {
		rows = append(rows, []string{"`" + source + "`", strconv.Itoa(s.LinksBySource[source])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

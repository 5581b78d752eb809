// Package report provides output writers for the harvest.
//
// Two kinds of output exist:
//
//   - the record stream: one JSONL line per harvested reference,
//     written as records become available (JSONLWriter)
//   - the run summary: an optional markdown document with counts and
//     skip statistics, written once after the run (MarkdownSummary)
//
// Design decision: We separate the writers from the data structures
// (package model) so new output formats can be added without touching
// the core types. The JSONL field layout itself is defined by the
// struct tags in model.
package report

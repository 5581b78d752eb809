// Package model defines the data structures shared across the harvest
// pipeline.
//
// The three core types mirror the pipeline stages:
//
//   - ReferenceLink: one discovered pointer from a noticeboard page into
//     a talk page, produced by the discovery stage
//   - ResolvedPage: the cached outcome of resolving one page title
//     against the content API
//   - OutputRecord: the join of a ReferenceLink with its ResolvedPage,
//     emitted once per link
//
// Design decision: We keep serialization helpers (JSONL encoding) next to
// the types rather than in a separate codec package because the on-disk
// format is defined by the struct tags. Splitting them would force every
// format change to touch two packages.
package model

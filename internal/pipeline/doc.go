// Package pipeline joins discovery and resolution into one harvest run.
//
// The Coordinator streams links out of the wiki paginator, resolves each
// link's target page through the cached resolver, and writes one output
// record per link whose page still exists. Links whose pages are absent
// or whose resolution fails are logged and dropped; the run continues.
//
// Design decision: We process links strictly one at a time instead of
// fanning out workers because:
// 1. Politeness pacing serializes the network anyway, so concurrency
//    buys nothing
// 2. Sequential processing preserves the discovery order in the output
// 3. The resolution cache needs no locking
package pipeline

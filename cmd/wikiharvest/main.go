// Package main provides the entry point for the wikiharvest CLI.
//
// wikiharvest collects discussion threads referenced from a wiki
// noticeboard. It crawls the noticeboard and its archives for talk page
// links, fetches each linked page's wikitext, and writes one JSONL
// record per reference.
//
// Usage:
//
//	wikiharvest harvest
//	wikiharvest discover -o links.jsonl
//	wikiharvest resolve links.jsonl
//
// See --help for all available options.
package main

// main is the entry point for wikiharvest.
func main() {
	Execute()
}

// Package main provides the entry point for the wikiharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikiharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikiharvest",
		Short: "Harvest discussion threads referenced from a wiki noticeboard",
		Long: `wikiharvest collects discussion threads referenced from a wiki noticeboard.

It crawls the noticeboard page and its archives for talk page links, fetches
each linked page's wikitext through the MediaWiki API, and writes one JSONL
record per reference.

The two stages can run together (harvest) or separately (discover, resolve),
with discover's link output feeding resolve.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON instead of text")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

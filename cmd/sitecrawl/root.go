package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set with -ldflags at release time.
var version = "dev"

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecrawl",
		Short: "Live SEO crawl of a single site",
		Long: `sitecrawl crawls a site starting from its home page, follows the links found
there one level deep and audits every page for missing titles, meta
descriptions, H1 headings and main content.

While running it re-scans the home page every 30 seconds and crawls only
links that were not seen before. Pages are fetched directly or through a
chain of public CORS relays.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "",
		"Configuration file path (default: .sitecrawl.yaml in current or home directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRelaysCmd())
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the entry point for the mailspider CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mailspider.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailspider",
		Short: "Bounded crawler that harvests contact emails from websites",
		Long: `Mailspider crawls a fixed set of seed websites and extracts contact
email addresses belonging to each site's own domain.

The crawl is shallow and bounded: only links found on the seed page are
followed, each domain has a page budget, and links whose paths look like
contact pages are fetched first.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
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

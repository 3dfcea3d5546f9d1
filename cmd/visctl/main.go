/*
Package main is the entry point for the visctl CLI.

visctl queries a brand visibility dataset offline: brand rankings, prompt
runs, global search and daily or weekly reports.

Usage:

	visctl [command] --dataset data.json

Available Commands:

	brands   List brands ranked by visibility
	prompts  List tracked prompts
	prompt   Show a prompt with its runs
	search   Search brands, prompts and sources
	report   Generate a visibility report
	import   Import a JSON dataset into SQLite
*/
package main

import (
	"fmt"
	"os"

	"github.com/aiseo/brand-visibility/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := cli.NewRootCmd(fmt.Sprintf("%s (commit: %s)", version, commit))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the xalgo command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// Match GOMAXPROCS to the container quota before the pool sizes itself.
	_, _ = maxprocs.Set()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "xalgo",
		Short: "xalgo - balanced search trees and binary heaps",
		Long: `xalgo ships generic AVL and red-black trees plus heap algorithms.

Commands:
  demo      Walk through the ordered map operations on an AVL tree
  stress    Run randomized invariant checks against every container
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./xalgo.yaml if present)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "json", "log format: json, text")

	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newStressCommand(opts))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Package main implements the usp command-line front-end (spec.md §6),
// wired the way Nrich-sunny-crawler/cmd/cmd.go wires its root command:
// package-level *cobra.Command values, an Execute entrypoint, and an
// init that registers each command's flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "usp",
	Short: "discover and print a website's sitemap tree",
	Long:  "usp discovers a website's sitemap hierarchy via robots.txt and well-known paths and prints it as a tree or a flat page list.",
}

func Execute() {
	rootCmd.AddCommand(lsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

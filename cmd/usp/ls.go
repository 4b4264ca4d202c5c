package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/romangod6/sitemaptree/config"
	"github.com/romangod6/sitemaptree/internal/discover"
	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/obslog"
	"github.com/romangod6/sitemaptree/internal/webclient"
	"github.com/spf13/cobra"
)

var (
	lsFormat       string
	lsNoRobots     bool
	lsNoKnownPaths bool
	lsStripPrefix  string
	lsVerbosity    int
	lsLogFile      string
)

var lsCmd = &cobra.Command{
	Use:   "ls URL",
	Short: "discover a homepage's sitemap tree and print it",
	Long:  "ls fetches robots.txt and the well-known sitemap paths under URL, assembles the sitemap tree, and prints it as a tab-indented tree or a flat page list.",
	Args:  cobra.ExactArgs(1),
	Run:   runLs,
}

func init() {
	lsCmd.Flags().StringVarP(&lsFormat, "format", "f", "tabtree", "output format: tabtree or pages")
	lsCmd.Flags().BoolVarP(&lsNoRobots, "no-robots", "r", false, "do not probe robots.txt")
	lsCmd.Flags().BoolVarP(&lsNoKnownPaths, "no-known-paths", "k", false, "do not probe well-known sitemap paths")
	lsCmd.Flags().StringVarP(&lsStripPrefix, "strip-prefix", "u", "", "strip this prefix from printed URLs")
	lsCmd.Flags().CountVarP(&lsVerbosity, "verbose", "v", "raise log verbosity (-v info, -vv debug)")
	lsCmd.Flags().StringVarP(&lsLogFile, "log-file", "l", "", "write logs to this file instead of stderr")
}

func runLs(cmd *cobra.Command, args []string) {
	homepage := args[0]

	if lsFormat != "tabtree" && lsFormat != "pages" {
		fmt.Fprintf(os.Stderr, "usp: invalid format %q, must be tabtree or pages\n", lsFormat)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "usp: loading config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if lsVerbosity >= 2 {
		level = "debug"
	} else if lsVerbosity == 1 {
		level = "info"
	}
	logFile := lsLogFile
	if logFile == "" {
		logFile = cfg.Logging.FilePath
	}
	logger := obslog.New(obslog.Options{Level: level, FilePath: logFile})
	defer logger.Sync() //nolint:errcheck

	client, err := webclient.NewCollyClient(
		webclient.WithConnectTimeout(cfg.ConnectTimeout()),
		webclient.WithReadTimeout(cfg.ReadTimeout()),
		webclient.WithUserAgent(cfg.Client.UserAgent),
		webclient.WithDelay(cfg.Delay(), cfg.Jitter()),
		webclient.WithProxy(cfg.Client.Proxy),
		webclient.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usp: building HTTP client: %v\n", err)
		os.Exit(1)
	}

	orchestrator := discover.NewOrchestrator(client, logger,
		discover.WithParallelism(cfg.Discovery.Parallelism),
		discover.WithMaxDepth(cfg.Discovery.MaxDepth),
	)

	opts := discover.DefaultOptions()
	opts.UseRobotsTxt = !lsNoRobots
	opts.UseKnownPaths = !lsNoKnownPaths
	opts.KnownPaths = cfg.Discovery.WellKnownPaths
	opts.ExtraKnownPaths = cfg.Discovery.ExtraKnownPaths

	root := orchestrator.DiscoverHomepage(context.Background(), homepage, opts)
	defer root.Close()

	if len(root.SubSitemaps()) == 0 {
		fmt.Fprintf(os.Stderr, "usp: could not discover any sitemap under %s\n", homepage)
		os.Exit(2)
	}

	switch lsFormat {
	case "pages":
		printPages(root)
	default:
		printTabTree(root, 0)
	}
}

func printTabTree(node *entity.Sitemap, depth int) {
	label := stripPrefix(node.URL())
	fmt.Printf("%s%s [%s]", strings.Repeat("\t", depth), label, node.Kind())
	if node.Kind() == entity.KindInvalid {
		fmt.Printf(" (%s)", node.Reason())
	}
	fmt.Println()

	for _, child := range node.SubSitemaps() {
		printTabTree(child, depth+1)
	}

	if node.Kind().IsPages() {
		pages, err := node.Pages()
		if err != nil {
			fmt.Fprintf(os.Stderr, "usp: reading pages from %s: %v\n", node.URL(), err)
			return
		}
		for _, p := range pages {
			fmt.Printf("%s%s\n", strings.Repeat("\t", depth+1), stripPrefix(p.URL))
		}
	}
}

func printPages(root *entity.Sitemap) {
	for p, err := range root.AllPages() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "usp: skipping unreadable page leaf: %v\n", err)
			continue
		}
		fmt.Println(stripPrefix(p.URL))
	}
}

func stripPrefix(u string) string {
	if lsStripPrefix == "" {
		return u
	}
	return strings.TrimPrefix(u, lsStripPrefix)
}

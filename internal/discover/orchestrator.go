package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/webclient"
	"go.uber.org/zap"
)

// DefaultKnownPaths is the well-known-path list of spec.md §4.9 step 3.
var DefaultKnownPaths = []string{
	"sitemap.xml",
	"sitemap_index.xml",
	"sitemap-index.xml",
	"sitemap.xml.gz",
	"sitemap_news.xml",
}

// Options configures one sitemap_tree_for_homepage call (spec.md §6).
type Options struct {
	UseRobotsTxt  bool
	UseKnownPaths bool

	// KnownPaths overrides the built-in DefaultKnownPaths base list when
	// non-nil (SPEC_FULL.md §2's discovery.wellknownpaths setting).
	KnownPaths      []string
	ExtraKnownPaths []string
	URLFilter       FilterFunc
	ListFilter      ListFilterFunc
}

// DefaultOptions returns spec.md §6's library-API defaults:
// use_robots_txt=true, use_known_paths=true, no extra paths, no filters.
func DefaultOptions() Options {
	return Options{UseRobotsTxt: true, UseKnownPaths: true}
}

// Orchestrator implements C10: seed robots.txt and well-known paths,
// mount whatever each yields under a synthetic website root.
type Orchestrator struct {
	Fetcher *Fetcher
	Logger  *zap.Logger
}

// OrchestratorOption configures an Orchestrator at construction time.
type OrchestratorOption func(*Orchestrator)

// WithParallelism bounds how many of one index's declared children are
// fetched concurrently (SPEC_FULL.md §7/§10). The default is 1
// (sequential), matching spec.md §9's determinism-first resolution.
func WithParallelism(n int) OrchestratorOption {
	return func(o *Orchestrator) { o.Fetcher.Parallelism = n }
}

// WithMaxDepth overrides the Fetcher's recursion depth bound (spec.md
// §4.8), which otherwise defaults to the package MaxDepth constant.
func WithMaxDepth(n int) OrchestratorOption {
	return func(o *Orchestrator) { o.Fetcher.MaxDepth = n }
}

// NewOrchestrator builds an Orchestrator backed by client, sharing one
// Fetcher for both the robots.txt probe and the well-known-path probes.
func NewOrchestrator(client webclient.Client, logger *zap.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{Fetcher: NewFetcher(client, logger), Logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DiscoverHomepage implements spec.md §4.9's sitemap_tree_for_homepage
// algorithm.
func (o *Orchestrator) DiscoverHomepage(ctx context.Context, homepage string, opts Options) *entity.Sitemap {
	root := entity.NewWebsiteRoot(homepage)
	rootFrame := RootFrame(opts.URLFilter, opts.ListFilter)
	// robots.txt and the well-known paths are themselves index-type
	// children of the synthetic root, so they enter one level below it
	// (spec.md §4.8: depth increments "when entering any index-type
	// child, including robots.txt").
	frame := rootFrame.descend(homepage)

	robotsSeen := map[string]struct{}{}

	if opts.UseRobotsTxt {
		robotsURL, err := joinPath(homepage, "robots.txt")
		if err != nil {
			o.Logger.Warn("cannot build robots.txt URL", zap.String("homepage", homepage), zap.Error(err))
		} else {
			robotsNode := o.Fetcher.FetchAndClassify(ctx, robotsURL, frame)
			if robotsNode.Kind() == entity.KindInvalid {
				o.Logger.Debug("robots.txt not usable",
					zap.String("url", robotsURL), zap.String("reason", robotsNode.Reason()))
			} else {
				root.AddChild(robotsNode)
				first := true
				for sm := range robotsNode.AllSitemaps() {
					if first {
						first = false
						continue
					}
					robotsSeen[sm.URL()] = struct{}{}
				}
			}
		}
	}

	if opts.UseKnownPaths {
		base := opts.KnownPaths
		if base == nil {
			base = DefaultKnownPaths
		}
		paths := make([]string, 0, len(base)+len(opts.ExtraKnownPaths))
		paths = append(paths, base...)
		paths = append(paths, opts.ExtraKnownPaths...)

		for _, p := range paths {
			o.probeKnownPath(ctx, root, homepage, p, frame, robotsSeen)
		}
	}

	return root
}

func (o *Orchestrator) probeKnownPath(ctx context.Context, root *entity.Sitemap, homepage, p string, frame Frame, robotsSeen map[string]struct{}) {
	u, err := joinPath(homepage, p)
	if err != nil {
		o.Logger.Warn("cannot build well-known path URL", zap.String("homepage", homepage), zap.String("path", p), zap.Error(err))
		return
	}

	resp, err := o.Fetcher.Client.Get(ctx, u)
	if err != nil {
		root.AddChild(entity.NewInvalid(u, err.Error()))
		return
	}
	if resp.StatusCode == http.StatusNotFound {
		o.Logger.Debug("well-known sitemap path not found", zap.String("url", u))
		return
	}
	if !resp.OK {
		reason := resp.Message
		if reason == "" {
			reason = fmt.Sprintf("http status %d", resp.StatusCode)
		}
		root.AddChild(entity.NewInvalid(u, reason))
		return
	}

	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = u
	}
	if _, seen := robotsSeen[finalURL]; seen {
		return
	}

	node := o.Fetcher.Classify(ctx, u, finalURL, resp.Body, frame)
	root.AddChild(node)
}

// joinPath resolves path against homepage's origin, tolerating an
// existing trailing slash on homepage.
func joinPath(homepage, path string) (string, error) {
	base, err := url.Parse(homepage)
	if err != nil {
		return "", err
	}
	base.Path = "/" + strings.TrimLeft(base.Path, "/")
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	base.Path = "/"
	return base.ResolveReference(ref).String(), nil
}

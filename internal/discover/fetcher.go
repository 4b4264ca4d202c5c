// Package discover implements the recursive fetch-classify-recurse
// engine (spec.md §4.7–§4.9): C8's fetcher/classifier, C9's recursion
// controller, and C10's top-level orchestrator, tying together
// internal/webclient, internal/robots, internal/plaintext,
// internal/xmlsitemap, and internal/entity.
//
// Grounded on internal/crawler/crawler.go's fetch-then-dispatch loop:
// this package keeps that shape (fetch, decide what the body is,
// recurse into whatever it names) but replaces the teacher's
// link-following semantics with spec.md's fixed classification order
// and cycle/depth bookkeeping.
package discover

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/romangod6/sitemaptree/internal/dateparse"
	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/romangod6/sitemaptree/internal/plaintext"
	"github.com/romangod6/sitemaptree/internal/robots"
	"github.com/romangod6/sitemaptree/internal/webclient"
	"github.com/romangod6/sitemaptree/internal/xmlsitemap"
	"go.uber.org/zap"
)

// Fetcher implements C8: fetch a URL, classify its body, and (for
// index-type results) re-enter the recursion controller for each
// declared child.
type Fetcher struct {
	Client webclient.Client
	Logger *zap.Logger

	// Parallelism bounds how many of one index's declared children are
	// fetched concurrently (spec.md §5 / SPEC_FULL.md §7). Below 1,
	// fetchChildren treats it as 1 (sequential).
	Parallelism int

	// MaxDepth bounds recursion depth (spec.md §4.8), defaulting to the
	// package MaxDepth constant. Configurable per Fetcher so
	// SPEC_FULL.md's discovery.maxdepth setting can override it.
	MaxDepth int
}

// NewFetcher builds a Fetcher; a nil logger defaults to a no-op sink.
// Children are fetched sequentially unless the caller raises Parallelism.
func NewFetcher(client webclient.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{Client: client, Logger: logger, Parallelism: 1, MaxDepth: MaxDepth}
}

// FetchAndClassify implements spec.md §4.7's ordered checks, given the
// frame the caller (the recursion controller or the orchestrator) has
// already validated rawURL against — depth bound and pre-fetch cycle
// check are the caller's responsibility; this method performs the
// fetch, the post-redirect cycle check (step 6), and classification.
func (f *Fetcher) FetchAndClassify(ctx context.Context, rawURL string, frame Frame) *entity.Sitemap {
	resp, err := f.Client.Get(ctx, rawURL)
	if err != nil {
		return entity.NewInvalid(rawURL, err.Error())
	}
	if !resp.OK {
		reason := resp.Message
		if reason == "" {
			reason = fmt.Sprintf("http status %d", resp.StatusCode)
		}
		return entity.NewInvalid(rawURL, reason)
	}

	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = rawURL
	}
	if frame.isAncestor(finalURL) {
		return entity.NewInvalid(finalURL, "recursive sitemap")
	}

	return f.Classify(ctx, rawURL, finalURL, resp.Body, frame)
}

// Classify dispatches a fetched body per spec.md §4.7 steps 2-4: a
// robots.txt-suffixed path always goes to C4 regardless of content;
// otherwise the body's leading-'<' heuristic sends it to C6, else C5.
// childFrame is the frame this node's own declared children would be
// evaluated under (depth+1, ancestors plus finalURL).
func (f *Fetcher) Classify(ctx context.Context, rawURL, finalURL string, body []byte, frame Frame) *entity.Sitemap {
	childFrame := frame.descend(finalURL)

	switch {
	case looksLikeRobotsPath(rawURL) || looksLikeRobotsPath(finalURL):
		return f.classifyRobots(ctx, finalURL, body, childFrame)
	case xmlsitemap.LooksLikeXML(body):
		return f.classifyXML(ctx, finalURL, body, childFrame)
	default:
		return f.classifyPlainText(finalURL, body)
	}
}

func (f *Fetcher) classifyRobots(ctx context.Context, finalURL string, body []byte, childFrame Frame) *entity.Sitemap {
	directives := robots.ParseSitemapDirectives(body)
	children := f.fetchChildren(ctx, directives, childFrame, nil)
	return entity.NewRobotsTxt(finalURL, children)
}

func (f *Fetcher) classifyXML(ctx context.Context, finalURL string, body []byte, childFrame Frame) *entity.Sitemap {
	result, err := xmlsitemap.Parse(body, f.Logger)
	if err != nil {
		return entity.NewInvalid(finalURL, err.Error())
	}

	switch result.Root {
	case xmlsitemap.RootSitemapIndex:
		children := f.fetchChildren(ctx, result.Children, childFrame, nil)
		return entity.NewIndexXML(finalURL, children)
	case xmlsitemap.RootURLSet:
		return buildOrInvalid(finalURL, result.Pages, entity.NewPagesXML)
	case xmlsitemap.RootRSS:
		return buildOrInvalid(finalURL, result.Pages, entity.NewPagesRSS)
	case xmlsitemap.RootFeed:
		return buildOrInvalid(finalURL, result.Pages, entity.NewPagesAtom)
	default:
		return entity.NewInvalid(finalURL, "unrecognised xml root element")
	}
}

func (f *Fetcher) classifyPlainText(finalURL string, body []byte) *entity.Sitemap {
	urls := plaintext.ParseURLs(body)
	pages := make([]page.Page, 0, len(urls))
	for _, u := range urls {
		pages = append(pages, page.Page{URL: u, Priority: dateparse.DefaultPriority})
	}
	// Zero URLs still yields an empty page sitemap, not an InvalidSitemap
	// (spec.md §7, "classification error").
	return buildOrInvalid(finalURL, pages, entity.NewPagesText)
}

func buildOrInvalid(url string, pages []page.Page, ctor func(string, []page.Page) (*entity.Sitemap, error)) *entity.Sitemap {
	sm, err := ctor(url, pages)
	if err != nil {
		return entity.NewInvalid(url, err.Error())
	}
	return sm
}

// fetchChildren implements spec.md §4.8's recursion controller applied
// to one index's declared child URLs: list filter, then per-URL filter,
// then depth bound, then pre-fetch cycle check, then fetch (which
// itself performs the post-redirect cycle check), then the optional
// skip-set dedup (skip is nil at every current call site; the
// orchestrator's well-known dedup is done in probeKnownPath instead).
// Fetches that clear the filters run through a worker pool
// bounded by Parallelism (SPEC_FULL.md §7); slots keep declaration
// order so sub_sitemaps is reassembled the same way regardless of how
// many fetches actually ran concurrently.
func (f *Fetcher) fetchChildren(ctx context.Context, rawChildren []string, frame Frame, skip map[string]struct{}) []*entity.Sitemap {
	urls := rawChildren
	if frame.ListFilter != nil {
		urls = frame.ListFilter(urls, frame.Depth, frame.Ancestors)
	}

	slots := make([]*entity.Sitemap, len(urls))
	toFetch := make(map[int]string, len(urls))
	for i, u := range urls {
		if frame.URLFilter != nil && !frame.URLFilter(u, frame.Depth, frame.Ancestors) {
			continue
		}
		if frame.Depth >= f.MaxDepth {
			slots[i] = entity.NewInvalid(u, "recursion depth exceeded")
			continue
		}
		if frame.isAncestor(u) {
			slots[i] = entity.NewInvalid(u, "recursive sitemap")
			continue
		}
		toFetch[i] = u
	}

	parallelism := f.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	for i, u := range toFetch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = f.FetchAndClassify(ctx, u, frame)
		}(i, u)
	}
	wg.Wait()

	children := make([]*entity.Sitemap, 0, len(urls))
	for _, child := range slots {
		if child == nil {
			continue
		}
		if skip != nil {
			if _, seen := skip[child.URL()]; seen {
				continue
			}
		}
		children = append(children, child)
	}
	return children
}

func looksLikeRobotsPath(rawURL string) bool {
	return strings.HasSuffix(strings.ToLower(rawURL), "robots.txt")
}

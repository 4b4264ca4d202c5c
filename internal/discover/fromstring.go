package discover

import (
	"github.com/romangod6/sitemaptree/internal/dateparse"
	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/romangod6/sitemaptree/internal/plaintext"
	"github.com/romangod6/sitemaptree/internal/robots"
	"github.com/romangod6/sitemaptree/internal/xmlsitemap"
	"go.uber.org/zap"
)

// SitemapFromString implements spec.md §6's sitemap_from_str: classify
// and parse a single already-fetched document with no network access.
// An index-type document's declared children are not fetched — each
// becomes an InvalidSitemap placeholder naming why, per §6's contract.
func SitemapFromString(url string, body []byte, logger *zap.Logger) *entity.Sitemap {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case looksLikeRobotsPath(url):
		directives := robots.ParseSitemapDirectives(body)
		return entity.NewRobotsTxt(url, unfetchedChildren(directives))
	case xmlsitemap.LooksLikeXML(body):
		return sitemapFromXMLString(url, body, logger)
	default:
		urls := plaintext.ParseURLs(body)
		pages := make([]page.Page, 0, len(urls))
		for _, u := range urls {
			pages = append(pages, page.Page{URL: u, Priority: dateparse.DefaultPriority})
		}
		return buildOrInvalid(url, pages, entity.NewPagesText)
	}
}

func sitemapFromXMLString(url string, body []byte, logger *zap.Logger) *entity.Sitemap {
	result, err := xmlsitemap.Parse(body, logger)
	if err != nil {
		return entity.NewInvalid(url, err.Error())
	}

	switch result.Root {
	case xmlsitemap.RootSitemapIndex:
		return entity.NewIndexXML(url, unfetchedChildren(result.Children))
	case xmlsitemap.RootURLSet:
		return buildOrInvalid(url, result.Pages, entity.NewPagesXML)
	case xmlsitemap.RootRSS:
		return buildOrInvalid(url, result.Pages, entity.NewPagesRSS)
	case xmlsitemap.RootFeed:
		return buildOrInvalid(url, result.Pages, entity.NewPagesAtom)
	default:
		return entity.NewInvalid(url, "unrecognised xml root element")
	}
}

func unfetchedChildren(urls []string) []*entity.Sitemap {
	out := make([]*entity.Sitemap, 0, len(urls))
	for _, u := range urls {
		out = append(out, entity.NewInvalid(u, "not fetched: parsed from a single document with no network access"))
	}
	return out
}

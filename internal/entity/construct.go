package entity

import "github.com/romangod6/sitemaptree/internal/page"

// dedupChildren keeps the first occurrence of each child URL, preserving
// declaration order (spec.md §3 invariant: no two direct children of one
// index entity share a URL).
func dedupChildren(children []*Sitemap) []*Sitemap {
	seen := make(map[string]struct{}, len(children))
	out := make([]*Sitemap, 0, len(children))
	for _, c := range children {
		if _, ok := seen[c.url]; ok {
			continue
		}
		seen[c.url] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NewWebsiteRoot creates the synthetic IndexWebsiteSitemap root the
// orchestrator mounts robots.txt and well-known-path sitemaps under
// (spec.md §3, §4.9). Children are attached afterward with AddChild.
func NewWebsiteRoot(homepage string) *Sitemap {
	return &Sitemap{kind: KindWebsite, url: homepage}
}

// AddChild mounts a child directly under an index-like node, dropping it
// if a same-URL child is already present (first wins). Reports whether the
// child was added.
func (s *Sitemap) AddChild(child *Sitemap) bool {
	if !s.kind.IsIndex() {
		return false
	}
	for _, c := range s.children {
		if c.url == child.url {
			return false
		}
	}
	s.children = append(s.children, child)
	return true
}

// NewRobotsTxt creates an IndexRobotsTxtSitemap node for a parsed
// robots.txt whose declared sitemaps are children.
func NewRobotsTxt(url string, children []*Sitemap) *Sitemap {
	return &Sitemap{kind: KindRobotsTxt, url: url, children: dedupChildren(children)}
}

// NewIndexXML creates an IndexXMLSitemap node for a parsed <sitemapindex>.
func NewIndexXML(url string, children []*Sitemap) *Sitemap {
	return &Sitemap{kind: KindIndexXML, url: url, children: dedupChildren(children)}
}

// NewPagesXML creates a PagesXMLSitemap leaf backed by a fresh page store.
func NewPagesXML(url string, pages []page.Page) (*Sitemap, error) {
	return newPagesLeaf(KindPagesXML, url, pages)
}

// NewPagesText creates a PagesTextSitemap leaf.
func NewPagesText(url string, pages []page.Page) (*Sitemap, error) {
	return newPagesLeaf(KindPagesText, url, pages)
}

// NewPagesRSS creates a PagesRSSSitemap leaf.
func NewPagesRSS(url string, pages []page.Page) (*Sitemap, error) {
	return newPagesLeaf(KindPagesRSS, url, pages)
}

// NewPagesAtom creates a PagesAtomSitemap leaf.
func NewPagesAtom(url string, pages []page.Page) (*Sitemap, error) {
	return newPagesLeaf(KindPagesAtom, url, pages)
}

func newPagesLeaf(kind Kind, url string, pages []page.Page) (*Sitemap, error) {
	store, err := page.NewStore(page.Dedup(pages), nil)
	if err != nil {
		return nil, err
	}
	return &Sitemap{kind: kind, url: url, store: store}, nil
}

// NewInvalid creates an InvalidSitemap placeholder for a failed fetch,
// unrecognised format, recursion limit, or cycle (spec.md §3).
func NewInvalid(url, reason string) *Sitemap {
	return &Sitemap{kind: KindInvalid, url: url, reason: reason}
}

// Package entity implements the sitemap tree's node types as a tagged sum
// type plus a shared capability contract (spec.md §3, design note in
// spec.md §9): interior nodes hold ordered children, leaves hold a page
// list backed by internal/page.Store, and InvalidSitemap is one more
// variant rather than an error type — callers never branch on which kind
// they hold when walking the tree.
package entity

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/romangod6/sitemaptree/internal/page"
)

// Kind tags which variant of spec.md §3's sum type a Sitemap node is.
type Kind int

const (
	KindWebsite Kind = iota
	KindRobotsTxt
	KindIndexXML
	KindPagesXML
	KindPagesText
	KindPagesRSS
	KindPagesAtom
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindWebsite:
		return "website"
	case KindRobotsTxt:
		return "robots_txt"
	case KindIndexXML:
		return "index_xml"
	case KindPagesXML:
		return "pages_xml"
	case KindPagesText:
		return "pages_text"
	case KindPagesRSS:
		return "pages_rss"
	case KindPagesAtom:
		return "pages_atom"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// IsIndex reports whether nodes of this kind carry sub-sitemaps.
func (k Kind) IsIndex() bool {
	return k == KindWebsite || k == KindRobotsTxt || k == KindIndexXML
}

// IsPages reports whether nodes of this kind carry a page list.
func (k Kind) IsPages() bool {
	switch k {
	case KindPagesXML, KindPagesText, KindPagesRSS, KindPagesAtom:
		return true
	default:
		return false
	}
}

// Sitemap is one node of the tree. Zero value is not meaningful; use one
// of the New* constructors.
type Sitemap struct {
	kind   Kind
	url    string
	reason string // populated only for KindInvalid

	children []*Sitemap // populated only for index-like kinds
	store    *page.Store // populated only for page-like kinds
}

// URL returns the node's own URL (the homepage for the synthetic root).
func (s *Sitemap) URL() string { return s.url }

// Kind returns which sum-type variant this node is.
func (s *Sitemap) Kind() Kind { return s.kind }

// Reason returns the human-readable failure reason of an InvalidSitemap,
// and the empty string for every other kind.
func (s *Sitemap) Reason() string {
	if s.kind != KindInvalid {
		return ""
	}
	return s.reason
}

// SubSitemaps returns this node's direct children in declaration order,
// or an empty slice for page-like and invalid nodes (spec.md §4.10: callers
// never branch on variant).
func (s *Sitemap) SubSitemaps() []*Sitemap {
	if !s.kind.IsIndex() {
		return []*Sitemap{}
	}
	out := make([]*Sitemap, len(s.children))
	copy(out, s.children)
	return out
}

// Pages reloads this node's page list from its backing store, or returns
// an empty slice for index-like and invalid nodes.
func (s *Sitemap) Pages() ([]page.Page, error) {
	if !s.kind.IsPages() {
		return []page.Page{}, nil
	}
	pages, err := s.store.Pages()
	if err != nil {
		return nil, err
	}
	if pages == nil {
		return []page.Page{}, nil
	}
	return pages, nil
}

// AllSitemaps performs a depth-first, pre-order walk of this node and every
// descendant (spec.md §4.10).
func (s *Sitemap) AllSitemaps() iter.Seq[*Sitemap] {
	return func(yield func(*Sitemap) bool) {
		var walk func(*Sitemap) bool
		walk = func(n *Sitemap) bool {
			if !yield(n) {
				return false
			}
			for _, c := range n.children {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(s)
	}
}

// AllPages lazily yields every descendant page in depth-first pre-order,
// loading and releasing one leaf's page list at a time so resident memory
// stays bounded regardless of tree size (spec.md §4.10, §9). A leaf whose
// store fails to reload is skipped; the error is surfaced via seq2's error
// slot so callers who care can observe it without aborting the walk.
func (s *Sitemap) AllPages() iter.Seq2[page.Page, error] {
	return func(yield func(page.Page, error) bool) {
		for node := range s.AllSitemaps() {
			if !node.kind.IsPages() {
				continue
			}
			pages, err := node.Pages()
			if err != nil {
				if !yield(page.Page{}, fmt.Errorf("sitemap %s: %w", node.url, err)) {
					return
				}
				continue
			}
			for _, p := range pages {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

// Close releases every leaf's backing scratch file beneath this node,
// idempotently. Call once the tree (or the subtree rooted at this node)
// is no longer needed.
func (s *Sitemap) Close() error {
	var firstErr error
	for node := range s.AllSitemaps() {
		if node.store == nil {
			continue
		}
		if err := node.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// dictNode is the JSON shape used by ToDict/FromDict, matching spec.md §8's
// to_dict/from_dict identity property.
type dictNode struct {
	Kind     string      `json:"kind"`
	URL      string      `json:"url"`
	Reason   string      `json:"reason,omitempty"`
	Children []dictNode  `json:"sub_sitemaps,omitempty"`
	Pages    []page.Page `json:"pages,omitempty"`
}

// ToDict serialises the subtree rooted at s to the generic dictionary form
// named as an external collaborator in spec.md §1/§6.
func (s *Sitemap) ToDict() (map[string]any, error) {
	d, err := s.toDictNode()
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Sitemap) toDictNode() (dictNode, error) {
	d := dictNode{Kind: s.kind.String(), URL: s.url, Reason: s.reason}
	for _, c := range s.children {
		cd, err := c.toDictNode()
		if err != nil {
			return dictNode{}, err
		}
		d.Children = append(d.Children, cd)
	}
	if s.kind.IsPages() {
		pages, err := s.Pages()
		if err != nil {
			return dictNode{}, err
		}
		d.Pages = pages
	}
	return d, nil
}

// FromDict rebuilds a tree from the generic dictionary form produced by
// ToDict. Page lists are re-spilled to fresh scratch files.
func FromDict(m map[string]any) (*Sitemap, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var d dictNode
	if err := json.Unmarshal(buf, &d); err != nil {
		return nil, err
	}
	return fromDictNode(d)
}

func fromDictNode(d dictNode) (*Sitemap, error) {
	kind, err := kindFromString(d.Kind)
	if err != nil {
		return nil, err
	}
	s := &Sitemap{kind: kind, url: d.URL, reason: d.Reason}
	for _, cd := range d.Children {
		child, err := fromDictNode(cd)
		if err != nil {
			return nil, err
		}
		s.children = append(s.children, child)
	}
	if kind.IsPages() {
		st, err := page.NewStore(d.Pages, nil)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "website":
		return KindWebsite, nil
	case "robots_txt":
		return KindRobotsTxt, nil
	case "index_xml":
		return KindIndexXML, nil
	case "pages_xml":
		return KindPagesXML, nil
	case "pages_text":
		return KindPagesText, nil
	case "pages_rss":
		return KindPagesRSS, nil
	case "pages_atom":
		return KindPagesAtom, nil
	case "invalid":
		return KindInvalid, nil
	default:
		return 0, fmt.Errorf("entity: unknown kind %q", s)
	}
}

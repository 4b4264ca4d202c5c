package xmlsitemap

import (
	"encoding/xml"
	"strings"

	"go.uber.org/zap"
)

// parseIndex implements spec.md §4.5's index-XML semantics: each <sitemap>
// contributes one child URL from its required <loc>; duplicate child URLs
// within the document are dropped, first wins, declaration order kept.
func parseIndex(dec *xml.Decoder, logger *zap.Logger) (*Result, error) {
	var children []string
	seen := make(map[string]struct{})

	truncated := walkChildren(dec, map[string]func(xml.StartElement) error{
		"sitemap": func(se xml.StartElement) error {
			loc, entryTruncated := readSitemapEntry(dec)
			if entryTruncated {
				return errEntryTruncated
			}
			loc = strings.TrimSpace(loc)
			if loc == "" {
				return nil
			}
			if _, ok := seen[loc]; ok {
				return nil
			}
			seen[loc] = struct{}{}
			children = append(children, loc)
			return nil
		},
	})

	if truncated {
		logger.Warn("sitemap index document truncated or malformed; kept partial result", zap.Int("children_parsed", len(children)))
	}

	return &Result{Root: RootSitemapIndex, Children: children, Truncated: truncated}, nil
}

// readSitemapEntry decodes one <sitemap> element's <loc> (and ignores
// <lastmod> and any other children). truncated reports whether the
// document ran out before this <sitemap>'s own end tag was reached, in
// which case the caller must drop whatever partial loc was collected.
func readSitemapEntry(dec *xml.Decoder) (loc string, truncated bool) {
	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"loc": func(se xml.StartElement) error {
			text, err := elementText(dec)
			loc = text
			return err
		},
	})
	return loc, truncated
}

package xmlsitemap

import (
	"encoding/xml"
	"strings"

	"github.com/romangod6/sitemaptree/internal/dateparse"
	"github.com/romangod6/sitemaptree/internal/page"
	"go.uber.org/zap"
)

// parseRSS implements spec.md §4.5's RSS 2.0 semantics: one page per
// <item> that has all of <title>, <description>, and <link>; items
// missing any are dropped. Channel-level metadata and Media RSS are
// ignored (spec.md §4.5, Non-goal).
func parseRSS(dec *xml.Decoder, logger *zap.Logger) (*Result, error) {
	var pages []page.Page

	truncated := walkChildren(dec, map[string]func(xml.StartElement) error{
		"channel": func(se xml.StartElement) error {
			if walkChannel(dec, &pages) {
				return errEntryTruncated
			}
			return nil
		},
	})

	if truncated {
		logger.Warn("rss document truncated or malformed; kept partial result", zap.Int("pages_parsed", len(pages)))
	}

	return &Result{Root: RootRSS, Pages: page.Dedup(pages), Truncated: truncated}, nil
}

func walkChannel(dec *xml.Decoder, pages *[]page.Page) (truncated bool) {
	return walkChildren(dec, map[string]func(xml.StartElement) error{
		"item": func(se xml.StartElement) error {
			p, ok, entryTruncated := readRSSItem(dec)
			if entryTruncated {
				return errEntryTruncated
			}
			if ok {
				*pages = append(*pages, p)
			}
			return nil
		},
	})
}

// readRSSItem decodes one <item> element. truncated reports whether the
// document ran out before this <item>'s own end tag was reached; the
// caller must drop the partial entry rather than commit it as a page.
func readRSSItem(dec *xml.Decoder) (p page.Page, ok bool, truncated bool) {
	var link, pubDate string
	hasTitle, hasDescription, hasLink := false, false, false

	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"title": func(se xml.StartElement) error {
			_, err := elementText(dec)
			hasTitle = true
			return err
		},
		"description": func(se xml.StartElement) error {
			_, err := elementText(dec)
			hasDescription = true
			return err
		},
		"link": func(se xml.StartElement) error {
			text, err := elementText(dec)
			link = strings.TrimSpace(text)
			hasLink = true
			return err
		},
		"pubDate": func(se xml.StartElement) error {
			text, err := elementText(dec)
			pubDate = strings.TrimSpace(text)
			return err
		},
	})

	if truncated {
		return page.Page{}, false, true
	}

	if !hasTitle || !hasDescription || !hasLink || link == "" {
		return page.Page{}, false, false
	}

	return page.Page{
		URL:          link,
		Priority:     dateparse.DefaultPriority,
		LastModified: dateparse.ParseTime(pubDate),
	}, true, false
}

package xmlsitemap

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/romangod6/sitemaptree/internal/dateparse"
	"github.com/romangod6/sitemaptree/internal/page"
	"go.uber.org/zap"
)

// parseAtom implements spec.md §4.5's Atom semantics. 0.3 and 1.0 share
// this parser; the feed version attribute is never inspected. One page per
// <entry>; link[rel="alternate"] (or the first link with no rel) supplies
// loc; updated/modified/issued populate last_modified in that fallback
// order. Entries lacking a usable link are dropped.
func parseAtom(dec *xml.Decoder, logger *zap.Logger) (*Result, error) {
	var pages []page.Page

	truncated := walkChildren(dec, map[string]func(xml.StartElement) error{
		"entry": func(se xml.StartElement) error {
			p, ok, entryTruncated := readAtomEntry(dec)
			if entryTruncated {
				return errEntryTruncated
			}
			if ok {
				pages = append(pages, p)
			}
			return nil
		},
	})

	if truncated {
		logger.Warn("atom document truncated or malformed; kept partial result", zap.Int("pages_parsed", len(pages)))
	}

	return &Result{Root: RootFeed, Pages: page.Dedup(pages), Truncated: truncated}, nil
}

// readAtomEntry decodes one <entry> element. truncated reports whether the
// document ran out before this <entry>'s own end tag was reached; the
// caller must drop the partial entry rather than commit it as a page.
func readAtomEntry(dec *xml.Decoder) (p page.Page, ok bool, truncated bool) {
	var (
		alternateHref, firstNoRelHref string
		updated, modified, issued     string
	)

	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"link": func(se xml.StartElement) error {
			var href, rel string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "href":
					href = a.Value
				case "rel":
					rel = a.Value
				}
			}
			if err := dec.Skip(); err != nil {
				return err
			}
			switch {
			case rel == "alternate" && alternateHref == "":
				alternateHref = href
			case rel == "" && firstNoRelHref == "":
				firstNoRelHref = href
			}
			return nil
		},
		"updated": func(se xml.StartElement) error {
			text, err := elementText(dec)
			updated = strings.TrimSpace(text)
			return err
		},
		"modified": func(se xml.StartElement) error {
			text, err := elementText(dec)
			modified = strings.TrimSpace(text)
			return err
		},
		"issued": func(se xml.StartElement) error {
			text, err := elementText(dec)
			issued = strings.TrimSpace(text)
			return err
		},
	})

	if truncated {
		return page.Page{}, false, true
	}

	loc := alternateHref
	if loc == "" {
		loc = firstNoRelHref
	}
	if loc == "" {
		return page.Page{}, false, false
	}

	var lastMod *time.Time
	for _, candidate := range []string{updated, modified, issued} {
		if candidate == "" {
			continue
		}
		if t := dateparse.ParseTime(candidate); t != nil {
			lastMod = t
			break
		}
	}

	return page.Page{
		URL:          loc,
		Priority:     dateparse.DefaultPriority,
		LastModified: lastMod,
	}, true, false
}

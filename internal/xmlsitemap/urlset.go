package xmlsitemap

import (
	"encoding/xml"
	"strings"

	"github.com/romangod6/sitemaptree/internal/dateparse"
	"github.com/romangod6/sitemaptree/internal/page"
	"go.uber.org/zap"
)

// parseURLSet implements spec.md §4.5's page-XML semantics: one page per
// <url>, <loc> required (missing → the page is skipped), Google News and
// Google Image extensions, and xhtml:link alternates.
func parseURLSet(dec *xml.Decoder, logger *zap.Logger) (*Result, error) {
	var pages []page.Page

	truncated := walkChildren(dec, map[string]func(xml.StartElement) error{
		"url": func(se xml.StartElement) error {
			p, ok, entryTruncated := readURLEntry(dec, logger)
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
		logger.Warn("urlset document truncated or malformed; kept partial result", zap.Int("pages_parsed", len(pages)))
	}

	return &Result{Root: RootURLSet, Pages: page.Dedup(pages), Truncated: truncated}, nil
}

// readURLEntry decodes one <url> element. truncated reports whether the
// document ran out before this <url>'s own end tag was reached; the
// caller must drop the partial entry rather than commit it as a page.
func readURLEntry(dec *xml.Decoder, logger *zap.Logger) (p page.Page, ok bool, truncated bool) {
	var (
		loc, lastmod, changefreq, priority string
		news                               *page.NewsStory
		images                             []page.Image
		alternates                         []page.Alternate
	)

	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"loc": func(se xml.StartElement) error {
			text, err := elementText(dec)
			loc = strings.TrimSpace(text)
			return err
		},
		"lastmod": func(se xml.StartElement) error {
			text, err := elementText(dec)
			lastmod = strings.TrimSpace(text)
			return err
		},
		"changefreq": func(se xml.StartElement) error {
			text, err := elementText(dec)
			changefreq = strings.TrimSpace(text)
			return err
		},
		"priority": func(se xml.StartElement) error {
			text, err := elementText(dec)
			priority = strings.TrimSpace(text)
			return err
		},
		"news": func(se xml.StartElement) error {
			if !nsAllowed(se.Name.Space, NSNews) {
				return dec.Skip()
			}
			story, storyTruncated := readNewsStory(dec)
			if storyTruncated {
				return errEntryTruncated
			}
			news = story
			return nil
		},
		"image": func(se xml.StartElement) error {
			if !nsAllowed(se.Name.Space, NSImage) {
				return dec.Skip()
			}
			img, imgTruncated := readImage(dec)
			if imgTruncated {
				return errEntryTruncated
			}
			if img.Loc != "" {
				images = append(images, img)
			}
			return nil
		},
		"link": func(se xml.StartElement) error {
			if !nsAllowed(se.Name.Space, NSXHTML) {
				return dec.Skip()
			}
			alt, matched := readAlternateAttrs(se)
			if err := dec.Skip(); err != nil {
				return err
			}
			if matched {
				alternates = append(alternates, alt)
			}
			return nil
		},
	})

	if truncated {
		return page.Page{}, false, true
	}

	if loc == "" {
		return page.Page{}, false, false
	}

	p = page.Page{
		URL:             loc,
		Priority:        dateparse.ParsePriority(priority),
		LastModified:    dateparse.ParseTime(lastmod),
		ChangeFrequency: changefreq,
		NewsStory:       news,
		Images:          images,
		Alternates:      alternates,
	}
	return p, true, false
}

// readNewsStory implements the Google News extension: publication name
// and language are required, everything else is optional. Missing either
// required field discards the extension but keeps the base page (spec.md
// §4.5).
func readNewsStory(dec *xml.Decoder) (story *page.NewsStory, truncated bool) {
	var (
		pubName, pubLang, title, pubDate, access string
		genres, keywords, tickers                string
	)

	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"publication": func(se xml.StartElement) error {
			if walkPublication(dec, &pubName, &pubLang) {
				return errEntryTruncated
			}
			return nil
		},
		"title": func(se xml.StartElement) error {
			text, err := elementText(dec)
			title = text
			return err
		},
		"publication_date": func(se xml.StartElement) error {
			text, err := elementText(dec)
			pubDate = text
			return err
		},
		"access": func(se xml.StartElement) error {
			text, err := elementText(dec)
			access = strings.TrimSpace(text)
			return err
		},
		"genres": func(se xml.StartElement) error {
			text, err := elementText(dec)
			genres = text
			return err
		},
		"keywords": func(se xml.StartElement) error {
			text, err := elementText(dec)
			keywords = text
			return err
		},
		"stock_tickers": func(se xml.StartElement) error {
			text, err := elementText(dec)
			tickers = text
			return err
		},
	})
	if truncated {
		return nil, true
	}

	if pubName == "" || pubLang == "" {
		return nil, false
	}

	story = &page.NewsStory{
		Title:           title,
		PublicationName: pubName,
		PublicationLang: pubLang,
		Genres:          splitCommaList(genres),
		Keywords:        splitCommaList(keywords),
		StockTickers:    splitCommaList(tickers),
	}
	if t := dateparse.ParseTime(pubDate); t != nil {
		story.PublicationDate = *t
	}
	switch page.Access(access) {
	case page.AccessSubscription, page.AccessRegistration:
		story.Access = page.Access(access)
	}
	return story, false
}

func walkPublication(dec *xml.Decoder, name, lang *string) (truncated bool) {
	return walkChildren(dec, map[string]func(xml.StartElement) error{
		"name": func(se xml.StartElement) error {
			text, err := elementText(dec)
			*name = strings.TrimSpace(text)
			return err
		},
		"language": func(se xml.StartElement) error {
			text, err := elementText(dec)
			*lang = strings.TrimSpace(text)
			return err
		},
	})
}

// readImage implements the Google Image extension: <loc> required.
// truncated reports whether the document ran out before this <image>'s
// own end tag was reached.
func readImage(dec *xml.Decoder) (img page.Image, truncated bool) {
	truncated = walkChildren(dec, map[string]func(xml.StartElement) error{
		"loc": func(se xml.StartElement) error {
			text, err := elementText(dec)
			img.Loc = strings.TrimSpace(text)
			return err
		},
		"caption": func(se xml.StartElement) error {
			text, err := elementText(dec)
			img.Caption = text
			return err
		},
		"geo_location": func(se xml.StartElement) error {
			text, err := elementText(dec)
			img.GeoLocation = text
			return err
		},
		"title": func(se xml.StartElement) error {
			text, err := elementText(dec)
			img.Title = text
			return err
		},
		"license": func(se xml.StartElement) error {
			text, err := elementText(dec)
			img.License = text
			return err
		},
	})
	return img, truncated
}

// readAlternateAttrs implements the xhtml:link rel="alternate" extension:
// both hreflang and href are required.
func readAlternateAttrs(se xml.StartElement) (page.Alternate, bool) {
	var alt page.Alternate
	var rel string
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "rel":
			rel = a.Value
		case "href":
			alt.Href = a.Value
		case "hreflang":
			alt.HrefLang = a.Value
		}
	}
	if rel != "alternate" || alt.Href == "" || alt.HrefLang == "" {
		return page.Alternate{}, false
	}
	return alt, true
}

func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package xmlsitemap implements spec.md §4.5's streaming XML dispatch and
// the four concrete XML dialect parsers (sitemap index, urlset with the
// Google News/Image and xhtml:link extensions, RSS 2.0, Atom 0.3/1.0).
//
// Detection and dispatch scan only as far as the first depth-1 start
// element, then hand off to a concrete parser that keeps decoding with the
// same *xml.Decoder — SAX-style, not a whole-document Unmarshal — so a
// truncated document yields whatever was parsed so far instead of nothing
// (spec.md §4.5, edge case 4). Namespace-aware element matching plus a
// local-name fallback is grounded on the xml.Decoder token-loop technique
// in other_examples/frase-io-gopher-parse-sitemap__sitemap.go and the
// charset-tolerant decoder wiring in other_examples/miku-sitemapped__sitemapped.go.
package xmlsitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/romangod6/sitemaptree/internal/page"
	"go.uber.org/zap"
)

// errEntryTruncated signals from an entry-level handler (the <sitemap>,
// <url>, <item>, or <entry> handlers) that the document ran out before the
// entry's own end tag was reached. The enclosing walkChildren call reports
// this back to its caller as truncated; the entry itself must never be
// committed.
var errEntryTruncated = errors.New("xmlsitemap: entry truncated before its end tag")

// Namespaces recognised per spec.md §4.5. Only the Google News, Google
// Image and xhtml:link extension elements are checked against these: one of
// them bearing any other resolved namespace is ignored. Core elements
// (<url>, <loc>, <lastmod>, <sitemap>, ...) are matched by local name alone,
// whatever their namespace.
const (
	NSSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	NSNews    = "http://www.google.com/schemas/sitemap-news/0.9"
	NSImage   = "http://www.google.com/schemas/sitemap-image/1.1"
	NSXHTML   = "http://www.w3.org/1999/xhtml"
)

// RootKind identifies which dialect a document's depth-1 element selected.
type RootKind string

const (
	RootSitemapIndex RootKind = "sitemapindex"
	RootURLSet       RootKind = "urlset"
	RootRSS          RootKind = "rss"
	RootFeed         RootKind = "feed"
)

// Result is the outcome of dispatching and parsing one XML document body.
type Result struct {
	Root      RootKind
	Children  []string    // declared sub-sitemap URLs, for RootSitemapIndex
	Pages     []page.Page // page records, for RootURLSet/RootRSS/RootFeed
	Truncated bool        // true if the document ended before its root closed
}

// LooksLikeXML implements spec.md §4.5's content sniff: trim leading
// whitespace, then check for a leading '<'. Content-Type is never trusted.
func LooksLikeXML(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// Parse dispatches body to the concrete parser selected by its root
// element's local name. An unrecognised root element is a fatal
// classification error; the caller (internal/discover) turns that into an
// InvalidSitemap (spec.md §4.5).
func Parse(body []byte, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dec := newDecoder(body)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlsitemap: no usable root element: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case string(RootSitemapIndex):
			return parseIndex(dec, logger)
		case string(RootURLSet):
			return parseURLSet(dec, logger)
		case string(RootRSS):
			return parseRSS(dec, logger)
		case string(RootFeed):
			return parseAtom(dec, logger)
		default:
			return nil, fmt.Errorf("xmlsitemap: unrecognised root element %q", se.Name.Local)
		}
	}
}

func newDecoder(body []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	return dec
}

// nsAllowed reports whether name's resolved namespace is one we recognise,
// or empty (a document with no namespace declarations at all — the
// tolerance feature of spec.md §4.5).
func nsAllowed(space string, allowed ...string) bool {
	if space == "" {
		return true
	}
	for _, a := range allowed {
		if space == a {
			return true
		}
	}
	return false
}

// walkChildren drives dec through the direct children of the element just
// opened, dispatching each recognised local name to its handler and
// skipping everything else's whole subtree with dec.Skip. It returns once
// the enclosing element's end tag is reached, or true for truncated if the
// document ends first.
func walkChildren(dec *xml.Decoder, handlers map[string]func(xml.StartElement) error) (truncated bool) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return !isCleanEOF(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			h, ok := handlers[t.Name.Local]
			if !ok {
				if err := dec.Skip(); err != nil {
					return true
				}
				continue
			}
			if err := h(t); err != nil {
				if err := dec.Skip(); err != nil {
					return true
				}
			}
		case xml.EndElement:
			return false
		}
	}
}

// isCleanEOF reports whether err is a plain io.EOF (well-formed document
// simply ran out of tokens) as opposed to a mid-element failure, which we
// still treat as "keep the partial result" per spec.md §4.5 but is worth
// distinguishing for logging.
func isCleanEOF(err error) bool {
	return err == io.EOF
}

func elementText(dec *xml.Decoder) (string, error) {
	var buf bytes.Buffer
	for {
		tok, err := dec.Token()
		if err != nil {
			return buf.String(), err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			return buf.String(), nil
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return buf.String(), err
			}
		}
	}
}

// Package dateparse implements spec.md §4.6's two-stage date parser and
// total priority parser: a fast ISO 8601 path, a permissive free-form
// fallback, and a guarantee that neither ever propagates a parse failure —
// callers get an absent value instead.
package dateparse

import (
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried first, in order, matching the strict ISO 8601
// subset that <lastmod>, <pubDate>-adjacent, and Atom timestamps actually
// use in the wild.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// fallbackLayouts is the permissive stage: RFC-822/1123 style timestamps
// as seen in RSS <pubDate>, plus a handful of common non-ISO variants.
var fallbackLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"January 2, 2006",
}

// ParseTime attempts the fast ISO 8601 path, then the permissive fallback.
// Any failure at both stages yields nil rather than an error — a
// malformed timestamp never aborts sitemap parsing (spec.md §4.6).
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// DefaultPriority is used whenever <priority> is missing, unparseable, or
// out of range (spec.md §3, §4.6).
const DefaultPriority = 0.5

// ParsePriority is total: any non-numeric or out-of-[0,1]-range input
// yields DefaultPriority instead of an error.
func ParsePriority(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPriority
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return DefaultPriority
	}
	return v
}

// Package robots extracts Sitemap directives from a robots.txt document
// (spec.md §4.3; RFC 9309's Sitemap field). This deliberately does not use
// github.com/temoto/robotstxt (pulled in transitively by colly): that
// library's Sitemaps() accessor targets the Sitemap key only, lowercases
// nothing but also does not preserve declaration order across a mixed
// User-agent/Sitemap file the way spec.md §4.3 requires, and has no notion
// of the Site-map alias at all. The extraction here is small enough, and
// exact enough to the required semantics, to implement directly — grounded
// on the case-insensitive regex technique in
// other_examples/YaoApp-yao__robots.go.
package robots

import (
	"regexp"
	"strings"
)

// reSitemapLine matches "Sitemap:" and "Site-map:" directives
// case-insensitively, capturing the URL with surrounding whitespace
// trimmed. User-agent, Allow, Disallow, and comment lines never match.
var reSitemapLine = regexp.MustCompile(`(?im)^[ \t]*Site-?map[ \t]*:[ \t]*(.+?)[ \t]*\r?$`)

// ParseSitemapDirectives extracts every Sitemap/Site-map URL from a
// robots.txt body, in declaration order, dropping second-and-later
// occurrences of a duplicate URL. URL case is preserved verbatim.
func ParseSitemapDirectives(body []byte) []string {
	matches := reSitemapLine.FindAllStringSubmatch(string(body), -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		u := strings.TrimSpace(m[1])
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

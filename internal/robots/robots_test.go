package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSitemapDirectivesBasic(t *testing.T) {
	body := []byte("User-agent: *\nDisallow: /admin\nSitemap: https://example.com/sitemap.xml\n")
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, ParseSitemapDirectives(body))
}

func TestParseSitemapDirectivesCaseInsensitiveAndAlias(t *testing.T) {
	body := []byte("SITEMAP: https://example.com/a.xml\nSite-map: https://example.com/b.xml\n")
	assert.Equal(t, []string{"https://example.com/a.xml", "https://example.com/b.xml"}, ParseSitemapDirectives(body))
}

func TestParseSitemapDirectivesDedupsPreservingOrder(t *testing.T) {
	body := []byte("Sitemap: https://example.com/a.xml\nSitemap: https://example.com/b.xml\nSitemap: https://example.com/a.xml\n")
	assert.Equal(t, []string{"https://example.com/a.xml", "https://example.com/b.xml"}, ParseSitemapDirectives(body))
}

func TestParseSitemapDirectivesIgnoresUnrelatedLines(t *testing.T) {
	body := []byte("User-agent: Googlebot\nAllow: /\n# Sitemap: https://example.com/commented.xml\nDisallow: /private\n")
	assert.Equal(t, []string{}, ParseSitemapDirectives(body))
}

func TestParseSitemapDirectivesEmptyBody(t *testing.T) {
	assert.Equal(t, []string{}, ParseSitemapDirectives(nil))
}

func TestParseSitemapDirectivesTrimsWhitespace(t *testing.T) {
	body := []byte("Sitemap:    https://example.com/a.xml   \r\n")
	assert.Equal(t, []string{"https://example.com/a.xml"}, ParseSitemapDirectives(body))
}

package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURLsBasic(t *testing.T) {
	body := []byte("https://example.com/a\nhttps://example.com/b\n")
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, ParseURLs(body))
}

func TestParseURLsSkipsBlankAndInvalidLines(t *testing.T) {
	body := []byte("\nhttps://example.com/a\nnot a url\nftp://example.com/b\n/relative/path\n   \nhttps://example.com/c\n")
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/c"}, ParseURLs(body))
}

func TestParseURLsDedupsFirstWins(t *testing.T) {
	body := []byte("https://example.com/a\nhttps://example.com/b\nhttps://example.com/a\n")
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, ParseURLs(body))
}

func TestParseURLsTrimsWhitespace(t *testing.T) {
	body := []byte("   https://example.com/a   \n")
	assert.Equal(t, []string{"https://example.com/a"}, ParseURLs(body))
}

func TestParseURLsEmptyBodyReturnsEmptySliceNotNil(t *testing.T) {
	got := ParseURLs(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageEqual(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	base := Page{URL: "https://example.com/a", Priority: 0.5, LastModified: &t1}

	tests := []struct {
		name  string
		other Page
		want  bool
	}{
		{"identical", Page{URL: "https://example.com/a", Priority: 0.5, LastModified: &t1}, true},
		{"different url", Page{URL: "https://example.com/b", Priority: 0.5, LastModified: &t1}, false},
		{"different priority", Page{URL: "https://example.com/a", Priority: 0.9, LastModified: &t1}, false},
		{"different last modified", Page{URL: "https://example.com/a", Priority: 0.5, LastModified: &t2}, false},
		{"nil vs set last modified", Page{URL: "https://example.com/a", Priority: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
		})
	}
}

func TestPageEqualExtensions(t *testing.T) {
	news := &NewsStory{Title: "Breaking", PublicationName: "Daily", PublicationLang: "en"}
	a := Page{URL: "https://example.com/n", NewsStory: news, Images: []Image{{Loc: "https://example.com/i.png"}}}
	b := Page{URL: "https://example.com/n", NewsStory: &NewsStory{Title: "Breaking", PublicationName: "Daily", PublicationLang: "en"}, Images: []Image{{Loc: "https://example.com/i.png"}}}
	assert.True(t, a.Equal(b))

	c := Page{URL: "https://example.com/n", Images: []Image{{Loc: "https://example.com/i.png"}}}
	assert.False(t, a.Equal(c), "presence of NewsStory must matter")
}

func TestDedupKeepsFirstOccurrenceInOrder(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/a", Priority: 0.1},
		{URL: "https://example.com/b", Priority: 0.2},
		{URL: "https://example.com/a", Priority: 0.9},
	}
	got := Dedup(pages)
	assert.Len(t, got, 2)
	assert.Equal(t, 0.1, got[0].Priority)
	assert.Equal(t, "https://example.com/b", got[1].URL)
}

func TestDedupEmpty(t *testing.T) {
	assert.Empty(t, Dedup(nil))
}

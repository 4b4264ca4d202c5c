package entity

import (
	"testing"

	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTree(t *testing.T) *Sitemap {
	t.Helper()
	leaf1, err := NewPagesXML("https://example.com/sitemap1.xml", []page.Page{
		{URL: "https://example.com/a", Priority: 0.5},
		{URL: "https://example.com/b", Priority: 0.8},
	})
	require.NoError(t, err)

	leaf2, err := NewPagesText("https://example.com/sitemap.txt", []page.Page{
		{URL: "https://example.com/c"},
	})
	require.NoError(t, err)

	invalid := NewInvalid("https://example.com/broken.xml", "http status 500")

	index := NewIndexXML("https://example.com/sitemap_index.xml", []*Sitemap{leaf1, invalid})

	root := NewWebsiteRoot("https://example.com")
	root.AddChild(index)
	root.AddChild(leaf2)
	return root
}

func TestAddChildDedupsByURL(t *testing.T) {
	root := NewWebsiteRoot("https://example.com")
	a := NewInvalid("https://example.com/x.xml", "boom")
	b := NewInvalid("https://example.com/x.xml", "different reason")

	assert.True(t, root.AddChild(a))
	assert.False(t, root.AddChild(b), "second child with the same URL must be rejected")
	assert.Len(t, root.SubSitemaps(), 1)
}

func TestAddChildRejectedOnNonIndexKind(t *testing.T) {
	leaf, err := NewPagesText("https://example.com/sitemap.txt", nil)
	require.NoError(t, err)
	defer leaf.Close()

	assert.False(t, leaf.AddChild(NewInvalid("https://example.com/x", "boom")))
}

func TestSubSitemapsEmptyForLeavesAndInvalid(t *testing.T) {
	leaf, err := NewPagesText("https://example.com/sitemap.txt", nil)
	require.NoError(t, err)
	defer leaf.Close()

	assert.Empty(t, leaf.SubSitemaps())
	assert.Empty(t, NewInvalid("https://example.com/x", "boom").SubSitemaps())
}

func TestPagesEmptyForIndexAndInvalid(t *testing.T) {
	root := NewWebsiteRoot("https://example.com")
	pages, err := root.Pages()
	require.NoError(t, err)
	assert.Empty(t, pages)

	pages, err = NewInvalid("https://example.com/x", "boom").Pages()
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestAllSitemapsDepthFirstPreOrder(t *testing.T) {
	root := buildSampleTree(t)
	defer root.Close()

	var urls []string
	for sm := range root.AllSitemaps() {
		urls = append(urls, sm.URL())
	}

	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/sitemap_index.xml",
		"https://example.com/sitemap1.xml",
		"https://example.com/broken.xml",
		"https://example.com/sitemap.txt",
	}, urls)
}

func TestAllPagesSkipsIndexAndInvalidNodes(t *testing.T) {
	root := buildSampleTree(t)
	defer root.Close()

	var got []string
	for p, err := range root.AllPages() {
		require.NoError(t, err)
		got = append(got, p.URL)
	}

	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, got)
}

func TestAllSitemapsEarlyStop(t *testing.T) {
	root := buildSampleTree(t)
	defer root.Close()

	var visited int
	for range root.AllSitemaps() {
		visited++
		if visited == 2 {
			break
		}
	}
	assert.Equal(t, 2, visited)
}

func TestToDictFromDictRoundTrip(t *testing.T) {
	root := buildSampleTree(t)
	defer root.Close()

	dict, err := root.ToDict()
	require.NoError(t, err)

	rebuilt, err := FromDict(dict)
	require.NoError(t, err)
	defer rebuilt.Close()

	var wantURLs, gotURLs []string
	for sm := range root.AllSitemaps() {
		wantURLs = append(wantURLs, sm.URL())
	}
	for sm := range rebuilt.AllSitemaps() {
		gotURLs = append(gotURLs, sm.URL())
	}
	assert.Equal(t, wantURLs, gotURLs)

	var wantPages, gotPages []page.Page
	for p, err := range root.AllPages() {
		require.NoError(t, err)
		wantPages = append(wantPages, p)
	}
	for p, err := range rebuilt.AllPages() {
		require.NoError(t, err)
		gotPages = append(gotPages, p)
	}
	require.Len(t, gotPages, len(wantPages))
	for i := range wantPages {
		assert.True(t, wantPages[i].Equal(gotPages[i]))
	}
}

func TestFromDictRejectsUnknownKind(t *testing.T) {
	_, err := FromDict(map[string]any{"kind": "not_a_real_kind", "url": "https://example.com"})
	assert.Error(t, err)
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, KindWebsite.IsIndex())
	assert.True(t, KindRobotsTxt.IsIndex())
	assert.True(t, KindIndexXML.IsIndex())
	assert.False(t, KindPagesXML.IsIndex())
	assert.False(t, KindInvalid.IsIndex())

	assert.True(t, KindPagesXML.IsPages())
	assert.True(t, KindPagesText.IsPages())
	assert.True(t, KindPagesRSS.IsPages())
	assert.True(t, KindPagesAtom.IsPages())
	assert.False(t, KindIndexXML.IsPages())
	assert.False(t, KindInvalid.IsPages())
}

func TestReasonOnlyPopulatedForInvalid(t *testing.T) {
	invalid := NewInvalid("https://example.com/x", "recursive sitemap")
	assert.Equal(t, "recursive sitemap", invalid.Reason())

	root := NewWebsiteRoot("https://example.com")
	assert.Equal(t, "", root.Reason())
}

func TestCloseIsIdempotentAcrossSubtree(t *testing.T) {
	root := buildSampleTree(t)
	require.NoError(t, root.Close())
	assert.NoError(t, root.Close())
}

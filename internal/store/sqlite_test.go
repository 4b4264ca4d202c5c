package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteTreeStore {
	t.Helper()
	s, err := NewSQLiteTreeStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func buildTestTree(t *testing.T) *entity.Sitemap {
	t.Helper()
	leaf, err := entity.NewPagesXML("https://example.com/sitemap.xml", []page.Page{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	})
	require.NoError(t, err)
	root := entity.NewWebsiteRoot("https://example.com")
	root.AddChild(leaf)
	return root
}

func TestSQLiteSaveAndLoadTreeRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	root := buildTestTree(t)
	defer root.Close()

	runID := uuid.New()
	require.NoError(t, s.SaveTree(ctx, runID, "https://example.com", root))

	loaded, err := s.LoadTree(ctx, runID)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, entity.KindWebsite, loaded.Kind())
	require.Len(t, loaded.SubSitemaps(), 1)
	assert.Equal(t, entity.KindPagesXML, loaded.SubSitemaps()[0].Kind())

	pages, err := loaded.SubSitemaps()[0].Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://example.com/a", pages[0].URL)
}

func TestSQLiteSaveTreeUpsertsOnSameRunID(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	runID := uuid.New()

	first := buildTestTree(t)
	require.NoError(t, s.SaveTree(ctx, runID, "https://example.com", first))
	first.Close()

	second := entity.NewWebsiteRoot("https://example.com")
	require.NoError(t, s.SaveTree(ctx, runID, "https://example.com", second))
	second.Close()

	loaded, err := s.LoadTree(ctx, runID)
	require.NoError(t, err)
	defer loaded.Close()
	assert.Empty(t, loaded.SubSitemaps(), "second save must overwrite, not append")
}

func TestSQLiteLoadTreeUnknownRunIsAnError(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.LoadTree(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestSQLiteListRunsOrdersMostRecentFirst(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	a := entity.NewWebsiteRoot("https://a.example.com")
	b := entity.NewWebsiteRoot("https://b.example.com")
	defer a.Close()
	defer b.Close()

	require.NoError(t, s.SaveTree(ctx, uuid.New(), "https://a.example.com", a))
	require.NoError(t, s.SaveTree(ctx, uuid.New(), "https://b.example.com", b))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "https://b.example.com", runs[0].Homepage)
	assert.Equal(t, "https://a.example.com", runs[1].Homepage)
}

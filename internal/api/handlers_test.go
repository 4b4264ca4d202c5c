package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/sitemaptree/internal/discover"
	"github.com/romangod6/sitemaptree/internal/entity"
	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/romangod6/sitemaptree/internal/store"
	"github.com/romangod6/sitemaptree/internal/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedClient is a minimal webclient.Client double, mirroring
// internal/discover's fakeClient but kept package-local since that one
// isn't exported across package boundaries.
type scriptedClient struct {
	body string
}

func (c *scriptedClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	if url == "https://example.com/sitemap.xml" {
		return &webclient.Response{OK: true, FinalURL: url, StatusCode: 200, Body: []byte(c.body)}, nil
	}
	return &webclient.Response{OK: false, StatusCode: http.StatusNotFound, Message: "http status 404"}, nil
}

// memStore is an in-memory store.TreeStore double for handler tests that
// don't need real persistence semantics, just round-trip behaviour.
type memStore struct {
	trees map[uuid.UUID]*entity.Sitemap
	homes map[uuid.UUID]string
}

func newMemStore() *memStore {
	return &memStore{trees: map[uuid.UUID]*entity.Sitemap{}, homes: map[uuid.UUID]string{}}
}

func (m *memStore) Initialize(ctx context.Context) error { return nil }
func (m *memStore) Close() error                         { return nil }

func (m *memStore) SaveTree(ctx context.Context, runID uuid.UUID, homepage string, root *entity.Sitemap) error {
	dict, err := root.ToDict()
	if err != nil {
		return err
	}
	rehydrated, err := entity.FromDict(dict)
	if err != nil {
		return err
	}
	m.trees[runID] = rehydrated
	m.homes[runID] = homepage
	return nil
}

func (m *memStore) LoadTree(ctx context.Context, runID uuid.UUID) (*entity.Sitemap, error) {
	tree, ok := m.trees[runID]
	if !ok {
		return nil, fmt.Errorf("store: run %s not found", runID)
	}
	return tree, nil
}

func (m *memStore) ListRuns(ctx context.Context) ([]store.RunSummary, error) {
	runs := make([]store.RunSummary, 0, len(m.trees))
	for id, homepage := range m.homes {
		runs = append(runs, store.RunSummary{RunID: id, Homepage: homepage})
	}
	return runs, nil
}

const testPagesDoc = `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://example.com/a</loc></url>
</urlset>`

func newTestHandler() (*Handler, *memStore) {
	client := &scriptedClient{body: testPagesDoc}
	orchestrator := discover.NewOrchestrator(client, nil)
	st := newMemStore()
	return NewHandler(orchestrator, st, nil, discover.DefaultOptions()), st
}

func TestDiscoverCreatesAndPersistsRun(t *testing.T) {
	handler, st := newTestHandler()
	router := gin.New()
	router.POST("/api/discover", handler.Discover)

	body, _ := json.Marshal(DiscoverRequest{Homepage: "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/discover", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp DiscoverResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://example.com", resp.Homepage)
	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, st.trees, 1)
}

func TestDiscoverRejectsMissingHomepage(t *testing.T) {
	handler, _ := newTestHandler()
	router := gin.New()
	router.POST("/api/discover", handler.Discover)

	req := httptest.NewRequest(http.MethodPost, "/api/discover", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunReturnsSerialisedTree(t *testing.T) {
	handler, st := newTestHandler()
	root := entity.NewWebsiteRoot("https://example.com")
	leaf, err := entity.NewPagesXML("https://example.com/sitemap.xml", []page.Page{{URL: "https://example.com/a"}})
	require.NoError(t, err)
	root.AddChild(leaf)
	runID := uuid.New()
	require.NoError(t, st.SaveTree(context.Background(), runID, "https://example.com", root))
	root.Close()

	router := gin.New()
	router.GET("/api/runs/:id", handler.GetRun)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var dict map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dict))
	assert.Equal(t, "website", dict["kind"])
}

func TestGetRunUnknownIDReturnsNotFound(t *testing.T) {
	handler, _ := newTestHandler()
	router := gin.New()
	router.GET("/api/runs/:id", handler.GetRun)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunInvalidIDReturnsBadRequest(t *testing.T) {
	handler, _ := newTestHandler()
	router := gin.New()
	router.GET("/api/runs/:id", handler.GetRun)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunPagesPaginates(t *testing.T) {
	handler, st := newTestHandler()
	root := entity.NewWebsiteRoot("https://example.com")
	leaf, err := entity.NewPagesXML("https://example.com/sitemap.xml", []page.Page{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/c"},
	})
	require.NoError(t, err)
	root.AddChild(leaf)
	runID := uuid.New()
	require.NoError(t, st.SaveTree(context.Background(), runID, "https://example.com", root))
	root.Close()

	router := gin.New()
	router.GET("/api/runs/:id/pages", handler.GetRunPages)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID.String()+"/pages?page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PaginationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 2, resp.Limit)

	data, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestListRunsReturnsAllPersistedRuns(t *testing.T) {
	handler, st := newTestHandler()
	a := entity.NewWebsiteRoot("https://a.example.com")
	b := entity.NewWebsiteRoot("https://b.example.com")
	require.NoError(t, st.SaveTree(context.Background(), uuid.New(), "https://a.example.com", a))
	require.NoError(t, st.SaveTree(context.Background(), uuid.New(), "https://b.example.com", b))
	a.Close()
	b.Close()

	router := gin.New()
	router.GET("/api/runs", handler.ListRuns)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)
}

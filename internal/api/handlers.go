package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/sitemaptree/internal/discover"
	"github.com/romangod6/sitemaptree/internal/page"
	"github.com/romangod6/sitemaptree/internal/store"
	"go.uber.org/zap"
)

// Handler exposes the discovery engine and the tree store over HTTP,
// adapted from internal/api/handlers.go's gin handler-struct convention.
type Handler struct {
	orchestrator *discover.Orchestrator
	store        store.TreeStore
	logger       *zap.Logger

	// defaultOpts seeds every /api/discover call before the request
	// body's overrides are applied, carrying the daemon's configured
	// well-known-path list (SPEC_FULL.md §2's discovery.wellknownpaths).
	defaultOpts discover.Options
}

func NewHandler(orchestrator *discover.Orchestrator, treeStore store.TreeStore, logger *zap.Logger, defaultOpts discover.Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orchestrator: orchestrator, store: treeStore, logger: logger, defaultOpts: defaultOpts}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count"`
}

// DiscoverRequest is POST /api/discover's body, mirroring spec.md §6's
// sitemap_tree_for_homepage parameter list (minus the callbacks, which
// have no HTTP-safe representation).
type DiscoverRequest struct {
	Homepage        string   `json:"homepage" binding:"required"`
	UseRobotsTxt    *bool    `json:"use_robots_txt"`
	UseKnownPaths   *bool    `json:"use_known_paths"`
	ExtraKnownPaths []string `json:"extra_known_paths"`
}

type DiscoverResponse struct {
	RunID    string `json:"run_id"`
	Homepage string `json:"homepage"`
}

// Discover runs the orchestrator synchronously and persists the result,
// per SPEC_FULL.md §6.9.
func (h *Handler) Discover(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	opts := h.defaultOpts
	if req.UseRobotsTxt != nil {
		opts.UseRobotsTxt = *req.UseRobotsTxt
	}
	if req.UseKnownPaths != nil {
		opts.UseKnownPaths = *req.UseKnownPaths
	}
	opts.ExtraKnownPaths = req.ExtraKnownPaths

	root := h.orchestrator.DiscoverHomepage(c.Request.Context(), req.Homepage, opts)
	defer root.Close()

	runID := uuid.New()
	if err := h.store.SaveTree(c.Request.Context(), runID, req.Homepage, root); err != nil {
		h.logger.Error("failed to persist discovered tree", zap.String("homepage", req.Homepage), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist discovered tree"})
		return
	}

	c.JSON(http.StatusCreated, DiscoverResponse{RunID: runID.String(), Homepage: req.Homepage})
}

// ListRuns returns every persisted run's summary.
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.store.ListRuns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun rehydrates a run and returns its dictionary form.
func (h *Handler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid run id"})
		return
	}

	root, err := h.store.LoadTree(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	defer root.Close()

	dict, err := root.ToDict()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to serialise tree"})
		return
	}
	c.JSON(http.StatusOK, dict)
}

// GetRunPages returns a paginated flat page list via AllPages, per
// SPEC_FULL.md §6.9.
func (h *Handler) GetRunPages(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid run id"})
		return
	}

	root, err := h.store.LoadTree(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	defer root.Close()

	pageNum, limit := getPaginationParams(c)
	offset := (pageNum - 1) * limit

	pages := make([]page.Page, 0, limit)
	total := 0
	for p, err := range root.AllPages() {
		if err != nil {
			h.logger.Warn("skipping unreadable page leaf", zap.Error(err))
			continue
		}
		if total >= offset && len(pages) < limit {
			pages = append(pages, p)
		}
		total++
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:       pages,
		Page:       pageNum,
		Limit:      limit,
		TotalCount: total,
	})
}

func getPaginationParams(c *gin.Context) (pageNum, limit int) {
	pageNum, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	if pageNum < 1 {
		pageNum = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return pageNum, limit
}

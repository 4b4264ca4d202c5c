// Package api implements the HTTP front-end named as an external
// collaborator in SPEC_FULL.md §6.9, adapted from
// internal/api/server.go's gin.Default + cors.New + route-group
// wiring.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/sitemaptree/internal/discover"
	"github.com/romangod6/sitemaptree/internal/store"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

// NewServer wires the discovery-on-demand routes: POST /api/discover,
// GET /api/runs, GET /api/runs/:id, GET /api/runs/:id/pages. defaultOpts
// seeds every /api/discover call before the request body's overrides
// are applied.
func NewServer(port int, orchestrator *discover.Orchestrator, treeStore store.TreeStore, logger *zap.Logger, defaultOpts discover.Options) *Server {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := NewHandler(orchestrator, treeStore, logger, defaultOpts)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.POST("/discover", handler.Discover)

		runs := api.Group("/runs")
		{
			runs.GET("", handler.ListRuns)
			runs.GET("/:id", handler.GetRun)
			runs.GET("/:id/pages", handler.GetRunPages)
		}
	}

	return &Server{router: router, port: port}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

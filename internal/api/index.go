package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chivis/survey-relay/internal/api/submission"
	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/loaders"
	"github.com/chivis/survey-relay/internal/shared"
	"github.com/chivis/survey-relay/internal/types"
	"github.com/gin-gonic/gin"
)

// NewRouter registers all feature routers and the single-page app fallback.
func NewRouter(cfg *config.Config, newSink loaders.SinkFactory) *gin.Engine {
	router := gin.New()
	router.Use(shared.RequestID(), shared.RequestLogger(), shared.Recovery(), shared.CORS(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	submission.RegisterRoutes(apiGroup, cfg, newSink)

	router.NoRoute(spaHandler(cfg.StaticDir))
	return router
}

// spaHandler serves files from dir and falls back to index.html for paths
// that are not files. Paths under /api are never served from the bundle.
func spaHandler(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not Found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(index)
	}
}

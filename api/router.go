package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/api/handler"
	"github.com/use-agent/bookmarksort/api/middleware"
	"github.com/use-agent/bookmarksort/cache"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/config"
	"github.com/use-agent/bookmarksort/metrics"
	"github.com/use-agent/bookmarksort/storage"
	"github.com/use-agent/bookmarksort/webhook"
)

// Deps carries everything the HTTP layer needs. Metrics, Cache and
// Notifier may be nil.
type Deps struct {
	Config     *config.Config
	Store      *storage.Store
	Cache      *cache.Cache
	Classifier *classify.Classifier
	Notifier   *webhook.Notifier
	Metrics    *metrics.Metrics
	StartTime  time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so probes and scrapers always work.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(d.Config.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")

	engineName := ""
	if crawler := d.Classifier.Crawler(); crawler != nil {
		engineName = crawler.EngineName()
	}
	v1.GET("/health", handler.Health(engineName, d.StartTime))

	protected := v1.Group("")
	if d.Config.Auth.Enabled {
		protected.Use(middleware.Auth(d.Config.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(d.Config.RateLimit))

	// Files
	protected.POST("/upload", handler.Upload(d.Store))
	protected.POST("/parse", handler.Parse(d.Store, d.Cache))

	// Classification
	protected.POST("/classify", handler.Classify(d.Classifier, d.Notifier))
	protected.GET("/classify/stream", handler.ClassifyStream(d.Classifier))
	protected.POST("/classify/stream", handler.ClassifyStream(d.Classifier))
	protected.GET("/ws", handler.Socket(d.Classifier))

	// Export
	protected.POST("/export", handler.Export())

	return r
}

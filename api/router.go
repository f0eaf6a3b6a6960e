package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/koans/api/handler"
	"github.com/use-agent/koans/api/middleware"
	"github.com/use-agent/koans/config"
)

// Deps are the services the routes call into.
type Deps struct {
	Loader handler.ScriptLoader

	// Pool is nil when the browser engine is disabled.
	Pool handler.PoolReporter

	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics are outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Pool, deps.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Greed and triangles
	protected.POST("/greed/score", handler.Score())
	protected.POST("/greed/roll", handler.Roll())
	protected.POST("/triangle", handler.Triangle())

	// Screenplay
	patterns := handler.Patterns{Scene: cfg.Script.ScenePattern, Role: cfg.Script.RolePattern}
	protected.POST("/script/scenes", handler.ScriptScenes(deps.Loader, patterns))
	protected.POST("/script/roles", handler.ScriptRoles(deps.Loader, patterns))
	protected.POST("/script/diff", handler.ScriptDiff(deps.Loader, patterns))
	protected.POST("/script/markdown", handler.ScriptMarkdown(deps.Loader))

	return r
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Khadka1996/everestnews-server/internal/api/handlers"
	"github.com/Khadka1996/everestnews-server/internal/api/middleware"
	"github.com/Khadka1996/everestnews-server/internal/config"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// Router sets up the HTTP router with all routes and middleware
type Router struct {
	engine         *gin.Engine
	articleHandler *handlers.ArticleHandler
	englishHandler *handlers.EnglishHandler
	healthHandler  *handlers.HealthHandler
	cfg            *config.Config
	logger         *logger.Logger
}

// NewRouter creates a new router
func NewRouter(
	articleHandler *handlers.ArticleHandler,
	englishHandler *handlers.EnglishHandler,
	healthHandler *handlers.HealthHandler,
	cfg *config.Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		articleHandler: articleHandler,
		englishHandler: englishHandler,
		healthHandler:  healthHandler,
		cfg:            cfg,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.cfg.Server.Mode)

	r.engine = gin.New()

	// Global middleware
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.CORSMiddleware(r.cfg.CORS.AllowedOrigins))
	r.engine.Use(middleware.LoggerMiddleware(r.logger))

	// Health check endpoints
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/health/live", r.healthHandler.Liveness)

	v1 := r.engine.Group("/api/v1")
	{
		articles := v1.Group("/articles")
		{
			articles.POST("", r.articleHandler.Create)
			articles.GET("", r.articleHandler.List)
			articles.GET("/trending", r.articleHandler.Trending)
			articles.GET("/locations", r.articleHandler.Locations)

			articles.GET("/status/:status", r.articleHandler.ByStatus)
			articles.GET("/category/:category", r.articleHandler.ByCategory)
			articles.GET("/category/:category/:status", r.articleHandler.ByCategoryWithStatus)
			articles.GET("/tag/:tag/:status", r.articleHandler.ByTagWithStatus)
			articles.GET("/authors/:authorName/:status", r.articleHandler.ByAuthorsWithStatus)

			articles.GET("/:id", r.articleHandler.GetByID)
			articles.GET("/:id/full", r.articleHandler.GetByIDWithViews)
			articles.PUT("/:id", r.articleHandler.Update)
			articles.DELETE("/:id", r.articleHandler.Delete)

			articles.GET("/:id/views", r.articleHandler.TotalViews)
			articles.PATCH("/:id/views", r.articleHandler.IncrementViews)
			articles.GET("/:id/shares", r.articleHandler.ShareCount)
			articles.PATCH("/:id/shares", r.articleHandler.IncrementShares)

			articles.GET("/:id/authors", r.articleHandler.Authors)
			articles.GET("/:id/tags", r.articleHandler.Tags)
			articles.GET("/:id/location", r.articleHandler.LocationByID)
		}

		english := v1.Group("/english")
		{
			english.POST("", r.englishHandler.Create)
			english.GET("", r.englishHandler.List)
			english.GET("/trending", r.englishHandler.Trending)
			english.GET("/locations", r.englishHandler.Locations)
			english.GET("/suggestions", r.englishHandler.Suggestions)
			english.GET("/category/:category", r.englishHandler.ByCategory)

			english.GET("/:id", r.englishHandler.GetByID)
			english.GET("/:id/full", r.englishHandler.GetByIDWithViews)
			english.PUT("/:id", r.englishHandler.Update)
			english.DELETE("/:id", r.englishHandler.Delete)

			english.GET("/:id/views", r.englishHandler.TotalViews)
			english.PATCH("/:id/views", r.englishHandler.IncrementViews)
			english.GET("/:id/shares", r.englishHandler.ShareCount)
			english.PATCH("/:id/shares", r.englishHandler.IncrementShares)
			english.GET("/:id/location", r.englishHandler.LocationByID)
		}
	}

	return r.engine
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	if r.engine == nil {
		return r.Setup()
	}
	return r.engine
}

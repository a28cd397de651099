package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Khadka1996/everestnews-server/internal/cache"
	"github.com/Khadka1996/everestnews-server/internal/repository/mongodb"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *mongodb.DB
	cache  *cache.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *mongodb.DB, cacheClient *cache.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cacheClient,
		logger: logger.WithComponent("health-handler"),
	}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
	})
}

// Readiness checks if the service is ready to handle requests. The
// document store is required; the cache is optional because every read
// degrades to a store query when it is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var (
		dbHealthy    bool
		cacheHealthy bool
		wg           sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		dbHealthy = h.db.Ping(ctx) == nil
	}()

	go func() {
		defer wg.Done()
		cacheHealthy = h.cache.IsReady()
	}()

	wg.Wait()

	checks := map[string]interface{}{
		"mongodb": map[string]interface{}{
			"healthy":  dbHealthy,
			"required": true,
		},
		"redis": map[string]interface{}{
			"healthy":  cacheHealthy,
			"required": false,
			"note":     "Optional - reads fall back to the document store when offline",
		},
	}

	status := "ready"
	code := 200
	if !dbHealthy {
		status = "not ready"
		code = 503
	}

	body := gin.H{
		"status": status,
		"checks": checks,
	}
	if !cacheHealthy {
		body["warnings"] = []string{"Cache not available - serving uncached reads"}
	}

	c.JSON(code, body)
}

// Liveness checks if the service is alive
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "alive",
	})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"repairtrack/internal/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports database and cache connectivity; never exposes credentials
// or driver errors.
func Health(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		cacheStatus := "connected"
		if store.Ping(ctx) != nil {
			cacheStatus = "error"
		}

		// The cache is optional; only the database decides readiness.
		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":          status == http.StatusOK,
			"db":          dbStatus,
			"cache":       cacheStatus,
			"cache_store": store.Name(),
		})
	}
}

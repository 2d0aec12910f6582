package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wcxxx57/bilibili-study-tool/internal/telemetry"
)

// SetupRoutes registers all API routes on the router.
func SetupRoutes(router *gin.Engine, handler *Handler, tp *telemetry.Provider) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if tp != nil {
		router.GET("/metrics", gin.WrapH(tp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", handler.Analyze)
		v1.POST("/analyze/batch", handler.AnalyzeBatch)
		v1.POST("/analyze/semantic", handler.AnalyzeSemantic)

		v1.GET("/search", handler.Search)
		v1.GET("/videos/:input", handler.Video)

		v1.GET("/reminder", handler.Reminder)

		v1.GET("/preferences/:user_id", handler.GetPreference)
		v1.PUT("/preferences/:user_id", handler.UpdatePreference)
		v1.POST("/preferences/:user_id/ignore", handler.IgnoreKeyword)
	}
}

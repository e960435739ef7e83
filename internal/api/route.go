package api

import (
	"Attune/internal/api/middleware"
	"Attune/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		checkInGroup := apiGroup.Group("/checkins")
		{
			checkInGroup.Use(middleware.IdentityMiddleware())
			{
				checkInGroup.POST("", group.CheckInHandler.Create)
			}
		}

		coupleGroup := apiGroup.Group("/couples/:couple_id")
		{
			coupleGroup.Use(middleware.IdentityMiddleware())
			{
				coupleGroup.GET("/checkins", group.CheckInHandler.List)

				coupleGroup.GET("/metrics/daily/7d", group.MetricHandler.GetMetrics7Days)
				coupleGroup.GET("/metrics/daily/30d", group.MetricHandler.GetMetrics30Days)
				coupleGroup.GET("/signals/daily", group.MetricHandler.GetDailySignals)
				coupleGroup.POST("/metrics/recompute", group.MetricHandler.Recompute)

				coupleGroup.GET("/insights/emotion", group.InsightHandler.GetEmotion)
				coupleGroup.GET("/insights/emotion/snapshots", group.InsightHandler.GetSnapshots)
				coupleGroup.GET("/insights/patterns", group.InsightHandler.GetPatterns)
			}
		}
	}

	return r
}

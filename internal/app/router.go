package app

import (
	"skillverify_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		verification := api.Group("/verification")
		{
			verification.GET("/health", c.verification.Health)
			verification.POST("/generate-assessment", c.verification.GenerateAssessment)
			verification.POST("/submit-assessment", c.verification.SubmitAssessment)
			verification.POST("/mock-test/generate", c.verification.GenerateMockTest)
			verification.POST("/mock-test/submit", c.verification.SubmitMockTest)
		}
	}
}

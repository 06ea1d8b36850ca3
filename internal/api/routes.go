package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Teacher routes
		v1.GET("/groups", handler.ListGroups)
		v1.GET("/context", handler.ResolveContext)
		v1.POST("/links", handler.CreateLink)
		v1.POST("/links/batch", handler.CreateLinksFromSheet)
		v1.GET("/links/qr", handler.LinkQRCode)
		v1.GET("/lessons/report", handler.LessonReport)

		// Student routes
		v1.POST("/recordings", handler.FileRecording)
		v1.POST("/recordings/queue", handler.QueueRecording)
		v1.GET("/recordings/:id", handler.GetRecording)
	}
}

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"screen2doc.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	videoHandler   *handlers.VideoHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware gin.HandlerFunc
	authLimiter    gin.HandlerFunc
	metricsHandler http.Handler
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/healthz", d.healthHandler.Check)
	r.GET("/metrics", gin.WrapH(d.metricsHandler))

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited per client IP)
		auth := api.Group("/auth")
		auth.Use(d.authLimiter)
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/verify-email", d.authHandler.VerifyEmail)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/resend-verification", d.authHandler.ResendVerification)
		}

		// Video routes (protected)
		videos := api.Group("/videos")
		videos.Use(d.authMiddleware)
		{
			videos.POST("/upload", d.videoHandler.Upload)
			videos.GET("", d.videoHandler.List)
			videos.GET("/:id/prd", d.videoHandler.GetPRD)
			videos.GET("/:id/business-plan", d.videoHandler.GetBusinessPlan)
		}
	}
}

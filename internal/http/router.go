package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skilltrack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skilltrack-backend/internal/http/middleware"
	"github.com/yungbote/skilltrack-backend/internal/observability"
)

type RouterConfig struct {
	AuthMiddleware *httpMW.AuthMiddleware

	TopicHandler      *httpH.TopicHandler
	ProfileHandler    *httpH.ProfileHandler
	GenerationHandler *httpH.GenerationHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if observability.Enabled() {
		r.Use(otelgin.Middleware("skilltrack-backend"))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Topics
		if cfg.TopicHandler != nil {
			protected.GET("/topics", cfg.TopicHandler.List)
			protected.POST("/topics", cfg.TopicHandler.Create)
			protected.GET("/topics/:id", cfg.TopicHandler.Get)
			protected.GET("/topics/:id/children", cfg.TopicHandler.Children)
			protected.PATCH("/topics/:id", cfg.TopicHandler.Update)
			protected.PATCH("/topics/:id/status", cfg.TopicHandler.UpdateStatus)
			protected.DELETE("/topics/:id", cfg.TopicHandler.Delete)
		}

		// Generation
		if cfg.GenerationHandler != nil {
			protected.POST("/topics/generate", cfg.GenerationHandler.Generate)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
			protected.PUT("/profile", cfg.ProfileHandler.Upsert)
		}
	}

	return r
}

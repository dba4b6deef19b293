package app

import (
	httpserver "github.com/yungbote/skilltrack-backend/internal/http"
	httpH "github.com/yungbote/skilltrack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skilltrack-backend/internal/http/middleware"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
)

func wireHTTP(log *logger.Logger, cfg Config, s Services) *httpserver.Server {
	log.Info("Wiring HTTP server...")
	return httpserver.NewServer(httpserver.RouterConfig{
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		TopicHandler:      httpH.NewTopicHandler(log, s.Topic),
		ProfileHandler:    httpH.NewProfileHandler(log, s.Profile),
		GenerationHandler: httpH.NewGenerationHandler(log, s.Generation),
		HealthHandler:     httpH.NewHealthHandler(),
	})
}

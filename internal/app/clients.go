package app

import (
	"fmt"

	redisclient "github.com/yungbote/skilltrack-backend/internal/clients/redis"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/services"
)

type Clients struct {
	RateLimiter redisclient.RateLimiter
	Generator   services.TopicGenerator
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	limiter, err := redisclient.NewRateLimiter(log, cfg.GenerationQuota, cfg.GenerationWindow)
	if err != nil {
		return Clients{}, fmt.Errorf("init rate limiter: %w", err)
	}
	generator, err := services.NewOpenAIGenerator(log, cfg.ProviderTimeout)
	if err != nil {
		return Clients{}, fmt.Errorf("init topic generator: %w", err)
	}
	return Clients{RateLimiter: limiter, Generator: generator}, nil
}

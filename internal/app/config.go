package app

import (
	"time"

	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/utils"
)

type Config struct {
	Port              string
	JWTSecretKey      string
	GenerationQuota   int
	GenerationWindow  time.Duration
	ProviderTimeout   time.Duration
	DescriptionMaxLen int
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	generationQuota := utils.GetEnvAsInt("GENERATION_QUOTA", 5, log)
	generationWindowSeconds := utils.GetEnvAsInt("GENERATION_WINDOW_SECONDS", 3600, log)
	providerTimeoutSeconds := utils.GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 30, log)
	descriptionMaxLen := utils.GetEnvAsInt("TOPIC_DESCRIPTION_MAX_LEN", 1000, log)
	return Config{
		Port:              port,
		JWTSecretKey:      jwtSecretKey,
		GenerationQuota:   generationQuota,
		GenerationWindow:  time.Duration(generationWindowSeconds) * time.Second,
		ProviderTimeout:   time.Duration(providerTimeoutSeconds) * time.Second,
		DescriptionMaxLen: descriptionMaxLen,
	}
}

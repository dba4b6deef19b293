package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/services"
)

type Services struct {
	Validator  *services.InputValidator
	Profile    services.ProfileService
	Topic      services.TopicService
	Generation services.GenerationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	validator := services.NewInputValidator(cfg.DescriptionMaxLen)
	profile := services.NewProfileService(db, log, r.Profile, validator)
	topic := services.NewTopicService(db, log, r.Topic, profile, validator)
	generation := services.NewGenerationService(db, log, r.Topic, r.Profile, r.GenerationLog, c.RateLimiter, c.Generator, validator)
	return Services{
		Validator:  validator,
		Profile:    profile,
		Topic:      topic,
		Generation: generation,
	}
}

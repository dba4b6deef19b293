package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/repos"
)

type Repos struct {
	Topic         repos.TopicRepo
	Profile       repos.ProfileRepo
	GenerationLog repos.GenerationLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Topic:         repos.NewTopicRepo(db, log),
		Profile:       repos.NewProfileRepo(db, log),
		GenerationLog: repos.NewGenerationLogRepo(db, log),
	}
}

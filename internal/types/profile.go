package types

import (
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert:
		return true
	}
	return false
}

// Profile holds the personalization inputs for generation plus the
// activity streak. Exactly one row per owner (unique index).
type Profile struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	ExperienceLevel ExperienceLevel `gorm:"size:20;not null" json:"experience_level"`
	YearsAway       int             `gorm:"not null" json:"years_away"`
	ActivityStreak  int             `gorm:"not null;default:0" json:"activity_streak"`
	LastCompletedAt *time.Time      `json:"last_completed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

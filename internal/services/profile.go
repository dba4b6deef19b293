package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/repos"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

type ProfileService interface {
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*types.Profile, error)
	Upsert(ctx context.Context, ownerID uuid.UUID, input UpsertProfileInput) (*types.Profile, error)
	RecordCompletion(ctx context.Context, ownerID uuid.UUID) error
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	validate    *InputValidator
	now         func() time.Time
}

func NewProfileService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.ProfileRepo, validate *InputValidator) ProfileService {
	return &profileService{
		db:          db,
		log:         baseLog.With("service", "ProfileService"),
		profileRepo: profileRepo,
		validate:    validate,
		now:         time.Now,
	}
}

func (s *profileService) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*types.Profile, error) {
	return s.profileRepo.GetByOwnerID(ctx, nil, ownerID)
}

func (s *profileService) Upsert(ctx context.Context, ownerID uuid.UUID, input UpsertProfileInput) (*types.Profile, error) {
	if err := s.validate.ValidateProfile(input); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.Upsert(ctx, nil, &types.Profile{
		OwnerID:         ownerID,
		ExperienceLevel: input.ExperienceLevel,
		YearsAway:       input.YearsAway,
	})
	if err != nil {
		s.log.Error("profile upsert failed", "owner_id", ownerID, "error", err)
		return nil, apperr.Internal(err)
	}
	return profile, nil
}

// RecordCompletion applies the activity-streak rule for one
// topic-completed event, reading and writing the streak inside a
// single transaction.
func (s *profileService) RecordCompletion(ctx context.Context, ownerID uuid.UUID) error {
	now := s.now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.profileRepo.GetByOwnerID(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		streak, changed := nextStreak(profile.ActivityStreak, profile.LastCompletedAt, now)
		if !changed {
			return nil
		}
		return s.profileRepo.UpdateStreak(ctx, tx, ownerID, streak, now)
	})
}

// nextStreak evaluates the calendar-day streak rule in UTC:
// completion on consecutive days increments, a second completion on
// the same day changes nothing, anything else (including the first
// completion ever) resets to 1.
func nextStreak(current int, last *time.Time, now time.Time) (int, bool) {
	today := now.UTC().Truncate(24 * time.Hour)
	if last != nil {
		lastDay := last.UTC().Truncate(24 * time.Hour)
		switch today.Sub(lastDay) {
		case 0:
			return current, false
		case 24 * time.Hour:
			return current + 1, true
		}
	}
	return 1, true
}

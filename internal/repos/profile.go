package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

type ProfileRepo interface {
	GetByOwnerID(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*types.Profile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error)
	UpdateStreak(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, streak int, lastCompletedAt time.Time) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepo) GetByOwnerID(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*types.Profile, error) {
	var profile types.Profile
	err := r.handle(tx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("profile")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the profile if absent, otherwise updates only the
// personalization fields. The ON CONFLICT path never touches
// activity_streak or last_completed_at, so repeated upserts cannot
// reset an accumulated streak. The unique index on owner_id makes
// concurrent first-time upserts safe.
func (r *profileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	err := r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"experience_level", "years_away", "updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row (existing id,
	// untouched streak) rather than the candidate insert values.
	return r.GetByOwnerID(ctx, tx, profile.OwnerID)
}

func (r *profileRepo) UpdateStreak(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, streak int, lastCompletedAt time.Time) error {
	res := r.handle(tx).WithContext(ctx).
		Model(&types.Profile{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]interface{}{
			"activity_streak":   streak,
			"last_completed_at": lastCompletedAt,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("profile")
	}
	return nil
}

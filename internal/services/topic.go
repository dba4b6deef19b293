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

// TopicList is one page of topics plus pagination metadata.
type TopicList struct {
	Items      []*types.Topic `json:"items"`
	Total      int64          `json:"total"`
	TotalPages int64          `json:"total_pages"`
}

type TopicService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter repos.TopicFilter, sort repos.TopicSort, page repos.Page) (*TopicList, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*types.Topic, error)
	GetChildren(ctx context.Context, ownerID, parentID uuid.UUID) ([]*types.Topic, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTopicInput) (*types.Topic, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch TopicPatch) (*types.Topic, error)
	UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status types.TopicStatus) (*types.Topic, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type topicService struct {
	db        *gorm.DB
	log       *logger.Logger
	topicRepo repos.TopicRepo
	profiles  ProfileService
	validate  *InputValidator
}

func NewTopicService(db *gorm.DB, baseLog *logger.Logger, topicRepo repos.TopicRepo, profiles ProfileService, validate *InputValidator) TopicService {
	return &topicService{
		db:        db,
		log:       baseLog.With("service", "TopicService"),
		topicRepo: topicRepo,
		profiles:  profiles,
		validate:  validate,
	}
}

func (s *topicService) List(ctx context.Context, ownerID uuid.UUID, filter repos.TopicFilter, sort repos.TopicSort, page repos.Page) (*TopicList, error) {
	page = page.Normalize()
	items, total, err := s.topicRepo.List(ctx, nil, ownerID, filter, sort, page)
	if err != nil {
		s.log.Error("list topics failed", "owner_id", ownerID, "error", err)
		return nil, apperr.Internal(err)
	}
	return &TopicList{
		Items:      items,
		Total:      total,
		TotalPages: repos.TotalPages(total, page.Size),
	}, nil
}

func (s *topicService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*types.Topic, error) {
	return s.topicRepo.GetByID(ctx, nil, ownerID, id)
}

func (s *topicService) GetChildren(ctx context.Context, ownerID, parentID uuid.UUID) ([]*types.Topic, error) {
	return s.topicRepo.GetChildren(ctx, nil, ownerID, parentID)
}

func (s *topicService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTopicInput) (*types.Topic, error) {
	if err := s.validate.ValidateCreate(input); err != nil {
		return nil, err
	}

	// Validation happens before any write; a bad parent is reported as
	// not-found whether it is missing or owned by someone else.
	if input.ParentID != nil {
		owned, err := s.topicRepo.ExistsAndOwned(ctx, nil, ownerID, *input.ParentID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !owned {
			return nil, apperr.NewNotFound("parent topic")
		}
	}

	status := types.TopicStatusNotStarted
	if input.Status != nil {
		status = *input.Status
	}
	links, err := types.MarshalPracticeLinks(input.PracticeLinks)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	topic := &types.Topic{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		ParentID:      input.ParentID,
		Title:         input.Title,
		Description:   input.Description,
		Status:        status,
		Technology:    input.Technology,
		PracticeLinks: links,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == types.TopicStatusCompleted {
		topic.CompletedAt = &now
	}

	if _, err := s.topicRepo.Create(ctx, nil, []*types.Topic{topic}); err != nil {
		s.log.Error("create topic failed", "owner_id", ownerID, "error", err)
		return nil, apperr.Internal(err)
	}
	return topic, nil
}

func (s *topicService) Update(ctx context.Context, ownerID, id uuid.UUID, patch TopicPatch) (*types.Topic, error) {
	if err := s.validate.ValidatePatch(patch); err != nil {
		return nil, err
	}

	topic, err := s.topicRepo.GetByID(ctx, nil, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		topic.Title = *patch.Title
	}
	if patch.Description != nil {
		topic.Description = *patch.Description
	}
	if patch.Technology != nil {
		topic.Technology = *patch.Technology
	}
	if patch.PracticeLinks != nil {
		links, err := types.MarshalPracticeLinks(*patch.PracticeLinks)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		topic.PracticeLinks = links
	}
	topic.UpdatedAt = time.Now().UTC()

	updated, err := s.topicRepo.Update(ctx, nil, topic)
	if err != nil {
		s.log.Error("update topic failed", "owner_id", ownerID, "topic_id", id, "error", err)
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

func (s *topicService) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status types.TopicStatus) (*types.Topic, error) {
	if err := s.validate.ValidateStatus(status); err != nil {
		return nil, err
	}

	topic, err := s.topicRepo.GetByID(ctx, nil, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	enteredCompleted := status == types.TopicStatusCompleted && topic.Status != types.TopicStatusCompleted
	topic.Status = status
	topic.UpdatedAt = now
	if status == types.TopicStatusCompleted {
		if enteredCompleted {
			topic.CompletedAt = &now
		}
	} else {
		topic.CompletedAt = nil
	}

	updated, err := s.topicRepo.Update(ctx, nil, topic)
	if err != nil {
		s.log.Error("update topic status failed", "owner_id", ownerID, "topic_id", id, "error", err)
		return nil, apperr.Internal(err)
	}

	// Entering completed is the single trigger for the streak rule.
	// Streak bookkeeping failure never fails the transition.
	if enteredCompleted {
		if err := s.profiles.RecordCompletion(ctx, ownerID); err != nil {
			s.log.Warn("streak update failed after completion", "owner_id", ownerID, "topic_id", id, "error", err)
		}
	}
	return updated, nil
}

func (s *topicService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.topicRepo.DeleteSubtree(ctx, nil, ownerID, id)
}

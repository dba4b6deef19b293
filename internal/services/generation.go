package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/skilltrack-backend/internal/clients/redis"
	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/repos"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

const (
	minGeneratedTopics = 3
	maxGeneratedTopics = 10

	completedTitlesLimit = 50
)

type GenerateResult struct {
	Topics         []*types.Topic `json:"items"`
	RemainingQuota int            `json:"remaining_quota"`
}

type GenerationService interface {
	Generate(ctx context.Context, ownerID uuid.UUID, input GenerateInput) (*GenerateResult, error)
}

type generationService struct {
	db          *gorm.DB
	log         *logger.Logger
	topicRepo   repos.TopicRepo
	profileRepo repos.ProfileRepo
	logRepo     repos.GenerationLogRepo
	limiter     redisclient.RateLimiter
	generator   TopicGenerator
	validate    *InputValidator
}

func NewGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	topicRepo repos.TopicRepo,
	profileRepo repos.ProfileRepo,
	logRepo repos.GenerationLogRepo,
	limiter redisclient.RateLimiter,
	generator TopicGenerator,
	validate *InputValidator,
) GenerationService {
	return &generationService{
		db:          db,
		log:         baseLog.With("service", "GenerationService"),
		topicRepo:   topicRepo,
		profileRepo: profileRepo,
		logRepo:     logRepo,
		limiter:     limiter,
		generator:   generator,
		validate:    validate,
	}
}

// Generate runs one request through the full pipeline: quota check,
// context build, provider call, response validation, batch persist.
// The provider call happens outside any database transaction.
func (s *generationService) Generate(ctx context.Context, ownerID uuid.UUID, input GenerateInput) (*GenerateResult, error) {
	if err := s.validate.ValidateGenerate(input); err != nil {
		return nil, err
	}

	// Quota first: an exhausted owner must never reach the provider.
	decision, err := s.limiter.Allow(ctx, ownerID)
	if err != nil {
		s.log.Error("rate limit check failed", "owner_id", ownerID, "error", err)
		return nil, apperr.Internal(err)
	}
	if !decision.Allowed {
		s.record(ctx, ownerID, input.Technology, types.GenerationRateLimited, 0, 0, "")
		return nil, apperr.NewQuotaExceeded(decision.RetryAfter)
	}

	profile, err := s.profileRepo.GetByOwnerID(ctx, nil, ownerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NewNotFound("profile (complete your profile first)")
		}
		return nil, apperr.Internal(err)
	}

	completedTitles, err := s.topicRepo.ListCompletedTitles(ctx, nil, ownerID, input.Technology, completedTitlesLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if input.ParentID != nil {
		owned, err := s.topicRepo.ExistsAndOwned(ctx, nil, ownerID, *input.ParentID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !owned {
			return nil, apperr.NewNotFound("parent topic")
		}
	}

	started := time.Now()
	candidates, err := s.generator.GenerateTopics(ctx, GenerationContext{
		Technology:      input.Technology,
		ExperienceLevel: profile.ExperienceLevel,
		YearsAway:       profile.YearsAway,
		Hint:            input.Hint,
		CompletedTitles: completedTitles,
	})
	latency := time.Since(started).Milliseconds()
	if err != nil {
		// Owner and technology are enough to diagnose provider health;
		// prompt and response bodies stay out of logs and the store.
		switch {
		case errors.Is(err, apperr.ErrProviderOutput):
			s.log.Error("provider contract violation", "owner_id", ownerID, "technology", input.Technology, "error", err)
			s.record(ctx, ownerID, input.Technology, types.GenerationProviderContract, 0, latency, err.Error())
		case errors.Is(err, apperr.ErrProviderDown):
			s.log.Warn("provider unavailable", "owner_id", ownerID, "technology", input.Technology, "error", err)
			s.record(ctx, ownerID, input.Technology, types.GenerationProviderTimeout, 0, latency, err.Error())
		default:
			s.log.Error("provider call failed", "owner_id", ownerID, "technology", input.Technology, "error", err)
			s.record(ctx, ownerID, input.Technology, types.GenerationFailed, 0, latency, err.Error())
		}
		return nil, err
	}

	if err := s.validateBatch(candidates); err != nil {
		s.log.Error("provider contract violation", "owner_id", ownerID, "technology", input.Technology, "error", err)
		s.record(ctx, ownerID, input.Technology, types.GenerationProviderContract, len(candidates), latency, err.Error())
		return nil, err
	}

	topics, err := s.persistBatch(ctx, ownerID, input, candidates)
	if err != nil {
		s.log.Error("persist generated batch failed", "owner_id", ownerID, "technology", input.Technology, "error", err)
		s.record(ctx, ownerID, input.Technology, types.GenerationFailed, len(candidates), latency, err.Error())
		return nil, apperr.Internal(err)
	}

	s.record(ctx, ownerID, input.Technology, types.GenerationSucceeded, len(topics), latency, "")
	return &GenerateResult{Topics: topics, RemainingQuota: decision.Remaining}, nil
}

// validateBatch enforces the provider contract: 3-10 candidates, each
// passing the same field rules as a manual create.
func (s *generationService) validateBatch(candidates []CandidateTopic) error {
	if len(candidates) < minGeneratedTopics || len(candidates) > maxGeneratedTopics {
		return apperr.NewProviderContract(fmt.Sprintf(
			"expected %d-%d topics, got %d", minGeneratedTopics, maxGeneratedTopics, len(candidates)))
	}
	for i, c := range candidates {
		if err := s.validate.ValidateCandidate(c); err != nil {
			return apperr.NewProviderContract(fmt.Sprintf("candidate %d: %v", i, err))
		}
	}
	return nil
}

// persistBatch inserts every validated candidate in one transaction;
// a failure inserts nothing.
func (s *generationService) persistBatch(ctx context.Context, ownerID uuid.UUID, input GenerateInput, candidates []CandidateTopic) ([]*types.Topic, error) {
	now := time.Now().UTC()
	topics := make([]*types.Topic, 0, len(candidates))
	for _, c := range candidates {
		links, err := types.MarshalPracticeLinks(c.PracticeLinks)
		if err != nil {
			return nil, err
		}
		topics = append(topics, &types.Topic{
			ID:            uuid.New(),
			OwnerID:       ownerID,
			ParentID:      input.ParentID,
			Title:         c.Title,
			Description:   c.Description,
			Status:        types.TopicStatusNotStarted,
			Technology:    input.Technology,
			PracticeLinks: links,
			SourcedFromAI: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.topicRepo.Create(ctx, tx, topics)
		return err
	})
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// record writes one diagnostics row; failures are logged, never
// surfaced, since the log is bookkeeping around the real outcome.
func (s *generationService) record(ctx context.Context, ownerID uuid.UUID, technology, status string, count int, latencyMS int64, errDetail string) {
	if len(errDetail) > 1000 {
		errDetail = errDetail[:1000]
	}
	_, err := s.logRepo.Create(ctx, nil, &types.GenerationLog{
		OwnerID:    ownerID,
		Technology: technology,
		Model:      s.generator.Model(),
		Status:     status,
		TopicCount: count,
		LatencyMS:  latencyMS,
		Error:      errDetail,
	})
	if err != nil {
		s.log.Warn("generation log write failed", "owner_id", ownerID, "status", status, "error", err)
	}
}

package services

import (
	"context"

	"github.com/yungbote/skilltrack-backend/internal/types"
)

// GenerationContext is everything the provider sees: the requested
// technology, the caller's profile context, an optional free-text
// hint and the titles already completed (to bias away from
// duplicates).
type GenerationContext struct {
	Technology      string
	ExperienceLevel types.ExperienceLevel
	YearsAway       int
	Hint            string
	CompletedTitles []string
}

// CandidateTopic is one provider-suggested topic before validation.
type CandidateTopic struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	PracticeLinks []types.PracticeLink `json:"practice_links"`
}

// TopicGenerator abstracts the external generative provider so tests
// can substitute a deterministic stub.
type TopicGenerator interface {
	GenerateTopics(ctx context.Context, gc GenerationContext) ([]CandidateTopic, error)
	Model() string
}

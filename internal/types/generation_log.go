package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	GenerationSucceeded        = "succeeded"
	GenerationRateLimited      = "rate_limited"
	GenerationProviderTimeout  = "provider_timeout"
	GenerationProviderContract = "provider_contract"
	GenerationFailed           = "failed"
)

// GenerationLog records one generation attempt per row, for provider
// health diagnostics. Prompts and raw responses are deliberately not
// stored here; they can contain free-text user input.
type GenerationLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Technology string    `gorm:"size:100;not null" json:"technology"`
	Model      string    `gorm:"size:100" json:"model"`
	Status     string    `gorm:"size:30;not null" json:"status"`
	TopicCount int       `gorm:"not null;default:0" json:"topic_count"`
	LatencyMS  int64     `gorm:"not null;default:0" json:"latency_ms"`
	Error      string    `gorm:"size:1000" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (GenerationLog) TableName() string { return "generation_log" }

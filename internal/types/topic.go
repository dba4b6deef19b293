package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TopicStatus string

const (
	TopicStatusNotStarted TopicStatus = "not_started"
	TopicStatusInProgress TopicStatus = "in_progress"
	TopicStatusCompleted  TopicStatus = "completed"
)

func (s TopicStatus) Valid() bool {
	switch s {
	case TopicStatusNotStarted, TopicStatusInProgress, TopicStatusCompleted:
		return true
	}
	return false
}

// PracticeLink points at an external practice problem. The link payload
// is opaque to this service beyond shape validation.
type PracticeLink struct {
	Title      string `json:"title" validate:"required,max=200"`
	URL        string `json:"url" validate:"required,url,max=500"`
	Difficulty string `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
}

const MaxPracticeLinks = 5

type Topic struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	ParentID      *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"size:5000" json:"description"`
	Status        TopicStatus    `gorm:"size:20;not null;index" json:"status"`
	Technology    string         `gorm:"size:100;not null;index" json:"technology"`
	PracticeLinks datatypes.JSON `gorm:"type:jsonb" json:"practice_links"`
	SourcedFromAI bool           `gorm:"not null;default:false" json:"sourced_from_ai"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`

	// ChildrenCount is populated by list queries via a correlated
	// subquery; it is never written to the table.
	ChildrenCount int64 `gorm:"->;-:migration" json:"children_count"`
}

func (Topic) TableName() string { return "topic" }

// MarshalPracticeLinks encodes links for the jsonb column. A nil slice
// encodes as an empty array so clients never see null.
func MarshalPracticeLinks(links []PracticeLink) (datatypes.JSON, error) {
	if links == nil {
		links = []PracticeLink{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Links decodes the jsonb practice_links column.
func (t *Topic) Links() ([]PracticeLink, error) {
	if len(t.PracticeLinks) == 0 {
		return []PracticeLink{}, nil
	}
	var links []PracticeLink
	if err := json.Unmarshal(t.PracticeLinks, &links); err != nil {
		return nil, err
	}
	return links, nil
}

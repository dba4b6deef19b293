package repos

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

// TopicFilter narrows list queries. RootOnly wins over ParentID and
// selects topics with no parent.
type TopicFilter struct {
	Status     *types.TopicStatus
	Technology *string
	ParentID   *uuid.UUID
	RootOnly   bool
}

type TopicSort struct {
	Field string
	Desc  bool
}

type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
}

// childrenCountSelect enriches each row with the number of direct
// children in the same query, avoiding an N+1 pattern.
const childrenCountSelect = `topic.*, (SELECT COUNT(*) FROM topic c WHERE c.parent_id = topic.id) AS children_count`

type TopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error)
	Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) (*types.Topic, error)
	List(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, filter TopicFilter, sort TopicSort, page Page) ([]*types.Topic, int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.Topic, error)
	GetChildren(ctx context.Context, tx *gorm.DB, ownerID, parentID uuid.UUID) ([]*types.Topic, error)
	ExistsAndOwned(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error)
	DeleteSubtree(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) error
	ListCompletedTitles(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, technology string, limit int) ([]string, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error) {
	if len(topics) == 0 {
		return []*types.Topic{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) (*types.Topic, error) {
	if err := r.handle(tx).WithContext(ctx).Save(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

func applyFilter(q *gorm.DB, filter TopicFilter) *gorm.DB {
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Technology != nil {
		q = q.Where("technology = ?", *filter.Technology)
	}
	if filter.RootOnly {
		q = q.Where("parent_id IS NULL")
	} else if filter.ParentID != nil {
		q = q.Where("parent_id = ?", *filter.ParentID)
	}
	return q
}

func orderClause(sort TopicSort) string {
	col, ok := sortColumns[strings.ToLower(strings.TrimSpace(sort.Field))]
	if !ok {
		col = "created_at"
		sort.Desc = true
	}
	if sort.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// Normalize clamps pagination to the allowed bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// TotalPages derives the page count for a result set.
func TotalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(pageSize)))
}

func (r *topicRepo) List(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, filter TopicFilter, sort TopicSort, page Page) ([]*types.Topic, int64, error) {
	page = page.Normalize()
	h := r.handle(tx).WithContext(ctx)

	// The count query shares the exact filter predicate with the data
	// query so pagination metadata can never drift from the rows.
	var total int64
	countQ := applyFilter(h.Model(&types.Topic{}).Where("owner_id = ?", ownerID), filter)
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*types.Topic
	dataQ := applyFilter(h.Model(&types.Topic{}).Where("owner_id = ?", ownerID), filter)
	if err := dataQ.
		Select(childrenCountSelect).
		Order(orderClause(sort)).
		Limit(page.Size).
		Offset((page.Number - 1) * page.Size).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*types.Topic{}
	}
	return items, total, nil
}

func (r *topicRepo) GetByID(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.Topic, error) {
	var topic types.Topic
	err := r.handle(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Select(childrenCountSelect).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("topic")
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetChildren(ctx context.Context, tx *gorm.DB, ownerID, parentID uuid.UUID) ([]*types.Topic, error) {
	owned, err := r.ExistsAndOwned(ctx, tx, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperr.NewNotFound("topic")
	}

	var items []*types.Topic
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Select(childrenCountSelect).
		Where("owner_id = ? AND parent_id = ?", ownerID, parentID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []*types.Topic{}
	}
	return items, nil
}

func (r *topicRepo) ExistsAndOwned(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteSubtree removes a topic and every transitive descendant in one
// transaction. Descendant ids are collected breadth-first before a
// single batched delete, so the operation behaves identically on
// stores without a native cascade constraint.
func (r *topicRepo) DeleteSubtree(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) error {
	run := func(t *gorm.DB) error {
		var count int64
		if err := t.Model(&types.Topic{}).
			Where("owner_id = ? AND id = ?", ownerID, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NewNotFound("topic")
		}

		ids := []uuid.UUID{id}
		frontier := []uuid.UUID{id}
		for len(frontier) > 0 {
			var next []uuid.UUID
			if err := t.Model(&types.Topic{}).
				Where("owner_id = ? AND parent_id IN ?", ownerID, frontier).
				Pluck("id", &next).Error; err != nil {
				return err
			}
			ids = append(ids, next...)
			frontier = next
		}

		return t.Where("owner_id = ? AND id IN ?", ownerID, ids).
			Delete(&types.Topic{}).Error
	}

	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(run)
}

func (r *topicRepo) ListCompletedTitles(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, technology string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var titles []string
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Where("owner_id = ? AND technology = ? AND status = ?", ownerID, technology, types.TopicStatusCompleted).
		Order("updated_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

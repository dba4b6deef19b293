package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&types.Topic{}, &types.Profile{}, &types.GenerationLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func newTestTopic(owner uuid.UUID, parent *uuid.UUID, title string) *types.Topic {
	now := time.Now().UTC()
	links, _ := types.MarshalPracticeLinks(nil)
	return &types.Topic{
		ID:            uuid.New(),
		OwnerID:       owner,
		ParentID:      parent,
		Title:         title,
		Status:        types.TopicStatusNotStarted,
		Technology:    "Go",
		PracticeLinks: links,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func mustCreate(t *testing.T, repo TopicRepo, topics ...*types.Topic) {
	t.Helper()
	if _, err := repo.Create(context.Background(), nil, topics); err != nil {
		t.Fatalf("create topics: %v", err)
	}
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

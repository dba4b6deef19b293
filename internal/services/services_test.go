package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	redisclient "github.com/yungbote/skilltrack-backend/internal/clients/redis"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/repos"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

func testNopLogger() *logger.Logger {
	return logger.NewNop()
}

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
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&types.Topic{}, &types.Profile{}, &types.GenerationLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

type fixture struct {
	db          *gorm.DB
	topicRepo   repos.TopicRepo
	profileRepo repos.ProfileRepo
	logRepo     repos.GenerationLogRepo
	validate    *InputValidator
	profiles    ProfileService
	topics      TopicService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	log := logger.NewNop()
	topicRepo := repos.NewTopicRepo(db, log)
	profileRepo := repos.NewProfileRepo(db, log)
	logRepo := repos.NewGenerationLogRepo(db, log)
	validate := NewInputValidator(1000)
	profiles := NewProfileService(db, log, profileRepo, validate)
	topics := NewTopicService(db, log, topicRepo, profiles, validate)
	return &fixture{
		db:          db,
		topicRepo:   topicRepo,
		profileRepo: profileRepo,
		logRepo:     logRepo,
		validate:    validate,
		profiles:    profiles,
		topics:      topics,
	}
}

func (f *fixture) withProfile(t *testing.T, ownerID uuid.UUID) {
	t.Helper()
	if _, err := f.profiles.Upsert(context.Background(), ownerID, UpsertProfileInput{
		ExperienceLevel: types.ExperienceIntermediate,
		YearsAway:       4,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

// fakeGenerator is a deterministic TopicGenerator.
type fakeGenerator struct {
	calls      int
	candidates []CandidateTopic
	err        error
}

func (g *fakeGenerator) GenerateTopics(ctx context.Context, gc GenerationContext) ([]CandidateTopic, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.candidates, nil
}

func (g *fakeGenerator) Model() string { return "fake-model" }

// fakeLimiter returns a canned decision.
type fakeLimiter struct {
	calls    int
	decision redisclient.Decision
	err      error
}

func (l *fakeLimiter) Allow(ctx context.Context, ownerID uuid.UUID) (redisclient.Decision, error) {
	l.calls++
	if l.err != nil {
		return redisclient.Decision{}, l.err
	}
	return l.decision, nil
}

func (l *fakeLimiter) Close() error { return nil }

func allowAll() *fakeLimiter {
	return &fakeLimiter{decision: redisclient.Decision{Allowed: true, Remaining: 4}}
}

func denyAll(retryAfter time.Duration) *fakeLimiter {
	return &fakeLimiter{decision: redisclient.Decision{Allowed: false, RetryAfter: retryAfter}}
}

func validCandidates(n int) []CandidateTopic {
	out := make([]CandidateTopic, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, CandidateTopic{
			Title:       "Generated topic " + uuid.NewString()[:8],
			Description: "A study topic.",
			PracticeLinks: []types.PracticeLink{
				{Title: "Warmup", URL: "https://example.com/p/1", Difficulty: "Easy"},
			},
		})
	}
	return out
}

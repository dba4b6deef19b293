package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

func TestNextStreakRules(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 5, d, 15, 30, 0, 0, time.UTC)
	}
	yesterday := day(9)
	today := day(10)
	earlierToday := time.Date(2026, 5, 10, 2, 0, 0, 0, time.UTC)
	threeDaysAgo := day(7)

	cases := []struct {
		name        string
		current     int
		last        *time.Time
		wantStreak  int
		wantChanged bool
	}{
		{"first completion ever", 0, nil, 1, true},
		{"same day no double increment", 3, &earlierToday, 3, false},
		{"consecutive day increments", 3, &yesterday, 4, true},
		{"two plus day gap resets", 9, &threeDaysAgo, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := nextStreak(tc.current, tc.last, today)
			if got != tc.wantStreak || changed != tc.wantChanged {
				t.Fatalf("want (%d, %v), got (%d, %v)", tc.wantStreak, tc.wantChanged, got, changed)
			}
		})
	}
}

func TestRecordCompletionAcrossDays(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	f.withProfile(t, owner)

	svc := f.profiles.(*profileService)
	current := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	// First completion.
	if err := f.profiles.RecordCompletion(context.Background(), owner); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Second completion the same day is a no-op.
	current = current.Add(5 * time.Hour)
	if err := f.profiles.RecordCompletion(context.Background(), owner); err != nil {
		t.Fatalf("record same day: %v", err)
	}
	profile, err := f.profiles.GetByOwnerID(context.Background(), owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.ActivityStreak != 1 {
		t.Fatalf("same-day streak: want=1 got=%d", profile.ActivityStreak)
	}

	// Next calendar day increments.
	current = time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC)
	if err := f.profiles.RecordCompletion(context.Background(), owner); err != nil {
		t.Fatalf("record next day: %v", err)
	}
	profile, _ = f.profiles.GetByOwnerID(context.Background(), owner)
	if profile.ActivityStreak != 2 {
		t.Fatalf("consecutive-day streak: want=2 got=%d", profile.ActivityStreak)
	}

	// A gap of two days resets to 1.
	current = time.Date(2026, 5, 14, 8, 0, 0, 0, time.UTC)
	if err := f.profiles.RecordCompletion(context.Background(), owner); err != nil {
		t.Fatalf("record after gap: %v", err)
	}
	profile, _ = f.profiles.GetByOwnerID(context.Background(), owner)
	if profile.ActivityStreak != 1 {
		t.Fatalf("post-gap streak: want=1 got=%d", profile.ActivityStreak)
	}
}

func TestRecordCompletionWithoutProfile(t *testing.T) {
	f := newFixture(t)
	if err := f.profiles.RecordCompletion(context.Background(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("record without profile: want not-found, got %v", err)
	}
}

func TestUpsertValidation(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	_, err := f.profiles.Upsert(context.Background(), owner, UpsertProfileInput{
		ExperienceLevel: types.ExperienceLevel("wizard"),
		YearsAway:       75,
	})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(verr.Violations) < 2 {
		t.Fatalf("both fields should be reported, got %+v", verr.Violations)
	}
}

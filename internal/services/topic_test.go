package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/pointers"
	"github.com/yungbote/skilltrack-backend/internal/repos"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

func TestCreateValidationEnumeratesEveryViolation(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	_, err := f.topics.Create(context.Background(), owner, CreateTopicInput{
		Title:      "",
		Technology: "C++!!", // '+' and '!' are outside the allowed set
		PracticeLinks: []types.PracticeLink{
			{Title: "broken", URL: "not a url", Difficulty: "Impossible"},
		},
	})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}

	fields := map[string]bool{}
	for _, v := range verr.Violations {
		fields[v.Field] = true
	}
	for _, want := range []string{"title", "technology", "practice_links[0].url", "practice_links[0].difficulty"} {
		if !fields[want] {
			t.Fatalf("violation for %q missing; got %+v", want, verr.Violations)
		}
	}
}

func TestCreateRejectsTooManyPracticeLinks(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	links := make([]types.PracticeLink, 6)
	for i := range links {
		links[i] = types.PracticeLink{Title: "p", URL: "https://example.com", Difficulty: "Easy"}
	}
	_, err := f.topics.Create(context.Background(), owner, CreateTopicInput{
		Title:         "Slices",
		Technology:    "Go",
		PracticeLinks: links,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("6 links should fail validation, got %v", err)
	}
}

func TestCreateWithParentValidatesOwnership(t *testing.T) {
	f := newFixture(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	parent, err := f.topics.Create(context.Background(), ownerA, CreateTopicInput{Title: "root", Technology: "Go"})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	// Cross-owner parenting reads as not-found, never permission
	// denied, so topic existence does not leak.
	_, err = f.topics.Create(context.Background(), ownerB, CreateTopicInput{
		Title: "child", Technology: "Go", ParentID: &parent.ID,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-owner parent: want not-found, got %v", err)
	}

	child, err := f.topics.Create(context.Background(), ownerA, CreateTopicInput{
		Title: "child", Technology: "Go", ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("same-owner parent: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Fatalf("child parent_id not set")
	}
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if topic.Status != types.TopicStatusNotStarted {
		t.Fatalf("default status: want=not_started got=%s", topic.Status)
	}
	links, err := topic.Links()
	if err != nil {
		t.Fatalf("links decode: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("default practice links: want empty, got %d", len(links))
	}
	if topic.SourcedFromAI {
		t.Fatalf("manual create must not carry the AI provenance marker")
	}
}

func TestUpdateEmptyPatchIsValidationError(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.topics.Update(context.Background(), owner, topic.ID, TopicPatch{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty patch: want validation error, got %v", err)
	}
}

func TestUpdateTouchesOnlyMutableFields(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.topics.Update(context.Background(), owner, topic.ID, TopicPatch{
		Title:       pointers.String("Hash maps"),
		Description: pointers.String("Deep dive."),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Hash maps" || updated.Description != "Deep dive." {
		t.Fatalf("patched fields not applied: %+v", updated)
	}
	if updated.Status != types.TopicStatusNotStarted {
		t.Fatalf("status must not change through field update")
	}
	if updated.Technology != "Go" {
		t.Fatalf("unpatched technology changed: %s", updated.Technology)
	}
}

func TestUpdateNotOwnedIsNotFound(t *testing.T) {
	f := newFixture(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	topic, err := f.topics.Create(context.Background(), ownerA, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.topics.Update(context.Background(), ownerB, topic.ID, TopicPatch{Title: pointers.String("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-owner update: want not-found, got %v", err)
	}
}

func TestUpdateStatusCompletionSideEffects(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	f.withProfile(t, owner)

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := f.topics.UpdateStatus(context.Background(), owner, topic.ID, types.TopicStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatalf("completed_at must be set on transition into completed")
	}

	profile, err := f.profiles.GetByOwnerID(context.Background(), owner)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ActivityStreak != 1 {
		t.Fatalf("streak after first completion: want=1 got=%d", profile.ActivityStreak)
	}

	// Moving away from completed clears the timestamp but never
	// decrements the streak.
	back, err := f.topics.UpdateStatus(context.Background(), owner, topic.ID, types.TopicStatusInProgress)
	if err != nil {
		t.Fatalf("back to in_progress: %v", err)
	}
	if back.CompletedAt != nil {
		t.Fatalf("completed_at must be cleared when leaving completed")
	}
	profile, err = f.profiles.GetByOwnerID(context.Background(), owner)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ActivityStreak != 1 {
		t.Fatalf("streak must not decrement: want=1 got=%d", profile.ActivityStreak)
	}
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	f.withProfile(t, owner)

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No forbidden edges among the three statuses.
	for _, status := range []types.TopicStatus{
		types.TopicStatusCompleted,
		types.TopicStatusNotStarted,
		types.TopicStatusInProgress,
		types.TopicStatusCompleted,
	} {
		if _, err := f.topics.UpdateStatus(context.Background(), owner, topic.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
}

func TestUpdateStatusWithoutProfileStillSucceeds(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Streak bookkeeping needs a profile; its absence must not block
	// the status transition itself.
	done, err := f.topics.UpdateStatus(context.Background(), owner, topic.ID, types.TopicStatusCompleted)
	if err != nil {
		t.Fatalf("complete without profile: %v", err)
	}
	if done.Status != types.TopicStatusCompleted {
		t.Fatalf("status not applied: %s", done.Status)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	topic, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "Maps", Technology: "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.topics.UpdateStatus(context.Background(), owner, topic.ID, types.TopicStatus("archived")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown status: want validation error, got %v", err)
	}
}

func TestDeletePropagatesNotFound(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	if err := f.topics.Delete(context.Background(), owner, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("delete missing: want not-found, got %v", err)
	}
}

func TestListReturnsPaginationMetadata(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	for i := 0; i < 5; i++ {
		if _, err := f.topics.Create(context.Background(), owner, CreateTopicInput{Title: "t", Technology: "Go"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := f.topics.List(context.Background(), owner, repos.TopicFilter{}, repos.TopicSort{}, repos.Page{Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 5 || list.TotalPages != 3 {
		t.Fatalf("metadata: want total=5 pages=3, got total=%d pages=%d", list.Total, list.TotalPages)
	}
	if len(list.Items) != 2 {
		t.Fatalf("page size: want=2 got=%d", len(list.Items))
	}
}

package sqlite

import (
	"context"
	"testing"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

func TestGetDreamForOwner_WrongOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")
	makeTestUser(t, s, "user-2", "b@example.com", "b")
	makeTestDream(t, s, "dream-1", "user-1")

	// Someone else's dream looks exactly like a missing one.
	if _, err := s.GetDreamForOwner(ctx, "dream-1", "user-2"); err != store.ErrNotFound {
		t.Errorf("expected not found, got %v", err)
	}

	if _, err := s.GetDreamForOwner(ctx, "dream-1", "user-1"); err != nil {
		t.Errorf("owner should see dream: %v", err)
	}
}

func TestListDreams_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")

	makeTestDream(t, s, "dream-old", "user-1", func(d *domain.Dream) {
		d.Date = "2026-01-05"
	})
	makeTestDream(t, s, "dream-new", "user-1", func(d *domain.Dream) {
		d.Date = "2026-02-10"
	})
	// No explicit date; sorts after all dated entries.
	makeTestDream(t, s, "dream-undated", "user-1")

	dreams, err := s.ListDreams(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if len(dreams) != 3 {
		t.Fatalf("expected 3 dreams, got %d", len(dreams))
	}

	wantOrder := []string{"dream-new", "dream-old", "dream-undated"}
	for i, want := range wantOrder {
		if dreams[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, dreams[i].ID, want)
		}
	}
}

func TestListDreams_TagFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")
	makeTestDream(t, s, "dream-1", "user-1")
	makeTestDream(t, s, "dream-2", "user-1")

	if _, err := s.ReplaceDreamTags(ctx, "dream-1", []string{"flying"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}

	dreams, err := s.ListDreams(ctx, "user-1", "flying")
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if len(dreams) != 1 || dreams[0].ID != "dream-1" {
		t.Fatalf("tag filter: got %d dreams", len(dreams))
	}
	if len(dreams[0].Tags) != 1 || dreams[0].Tags[0] != "flying" {
		t.Errorf("tags not attached: %v", dreams[0].Tags)
	}

	// Exact match only.
	none, err := s.ListDreams(ctx, "user-1", "fly")
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("partial tag name should not match, got %d", len(none))
	}
}

func TestListDreams_Empty(t *testing.T) {
	s := newTestStore(t)

	makeTestUser(t, s, "user-1", "a@example.com", "a")

	dreams, err := s.ListDreams(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if dreams == nil || len(dreams) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", dreams)
	}
}

func TestDeleteDream_ReclaimsOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")
	makeTestDream(t, s, "dream-1", "user-1")
	makeTestDream(t, s, "dream-2", "user-1")

	if _, err := s.ReplaceDreamTags(ctx, "dream-1", []string{"solo", "shared"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}
	if _, err := s.ReplaceDreamTags(ctx, "dream-2", []string{"shared"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}

	if err := s.DeleteDream(ctx, "dream-1", "user-1"); err != nil {
		t.Fatalf("DeleteDream: %v", err)
	}

	// "solo" lost its only dream; "shared" is still in use.
	if _, err := s.GetTagByName(ctx, "solo"); err != store.ErrNotFound {
		t.Errorf("expected solo reclaimed, got %v", err)
	}
	if _, err := s.GetTagByName(ctx, "shared"); err != nil {
		t.Errorf("shared should survive: %v", err)
	}
}

func TestDeleteDream_WrongOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")
	makeTestUser(t, s, "user-2", "b@example.com", "b")
	makeTestDream(t, s, "dream-1", "user-1")

	if err := s.DeleteDream(ctx, "dream-1", "user-2"); err != store.ErrNotFound {
		t.Errorf("expected not found, got %v", err)
	}

	// Still there for the real owner.
	if _, err := s.GetDreamForOwner(ctx, "dream-1", "user-1"); err != nil {
		t.Errorf("dream should survive: %v", err)
	}
}

func TestUpdateDream(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "a")
	d := makeTestDream(t, s, "dream-1", "user-1")

	d.Title = "new title"
	d.Content = "updated content"
	d.IsPublic = true
	d.Touch()
	if err := s.UpdateDream(ctx, d); err != nil {
		t.Fatalf("UpdateDream: %v", err)
	}

	got, err := s.GetDreamForOwner(ctx, "dream-1", "user-1")
	if err != nil {
		t.Fatalf("GetDreamForOwner: %v", err)
	}
	if got.Title != "new title" || got.Content != "updated content" || !got.IsPublic {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestPublicDreams(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "alice")
	makeTestUser(t, s, "user-2", "b@example.com", "bob")

	makeTestDream(t, s, "dream-pub", "user-1", func(d *domain.Dream) {
		d.IsPublic = true
	})
	makeTestDream(t, s, "dream-priv", "user-1")

	if _, err := s.ToggleReaction(ctx, "dream-pub", "user-2", domain.ReactionTypeLike); err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if _, err := s.ReplaceDreamTags(ctx, "dream-pub", []string{"flying"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}

	dreams, err := s.ListPublicDreams(ctx, "")
	if err != nil {
		t.Fatalf("ListPublicDreams: %v", err)
	}
	if len(dreams) != 1 {
		t.Fatalf("expected 1 public dream, got %d", len(dreams))
	}
	pd := dreams[0]
	if pd.ID != "dream-pub" {
		t.Errorf("ID: got %s", pd.ID)
	}
	if pd.AuthorUsername != "alice" {
		t.Errorf("AuthorUsername: got %q", pd.AuthorUsername)
	}
	if pd.Likes != 1 {
		t.Errorf("Likes: got %d, want 1", pd.Likes)
	}

	// Tag filter is an exact match on the tag name.
	dreams, err = s.ListPublicDreams(ctx, "flying")
	if err != nil {
		t.Fatalf("ListPublicDreams(flying): %v", err)
	}
	if len(dreams) != 1 {
		t.Errorf("expected 1 dream tagged flying, got %d", len(dreams))
	}
	dreams, err = s.ListPublicDreams(ctx, "water")
	if err != nil {
		t.Fatalf("ListPublicDreams(water): %v", err)
	}
	if len(dreams) != 0 {
		t.Errorf("expected no dreams tagged water, got %d", len(dreams))
	}

	// Private dream is invisible through the public getter.
	if _, err := s.GetPublicDream(ctx, "dream-priv"); err != store.ErrNotFound {
		t.Errorf("expected not found for private dream, got %v", err)
	}
}

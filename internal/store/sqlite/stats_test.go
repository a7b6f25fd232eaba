package sqlite

import (
	"context"
	"testing"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func TestDreamActivity_Scopes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "alice")
	makeTestUser(t, s, "user-2", "b@example.com", "bob")

	makeTestDream(t, s, "dream-1", "user-1", func(d *domain.Dream) {
		d.Date = "2026-08-20"
		d.IsPublic = true
	})
	makeTestDream(t, s, "dream-2", "user-1")
	makeTestDream(t, s, "dream-3", "user-2", func(d *domain.Dream) { d.IsPublic = true })

	self, err := s.DreamActivity(ctx, domain.StatsScope{OwnerID: "user-1"})
	if err != nil {
		t.Fatalf("DreamActivity self: %v", err)
	}
	if len(self) != 2 {
		t.Errorf("self scope: got %d rows, want 2", len(self))
	}

	public, err := s.DreamActivity(ctx, domain.StatsScope{})
	if err != nil {
		t.Fatalf("DreamActivity public: %v", err)
	}
	if len(public) != 2 {
		t.Errorf("public scope: got %d rows, want 2", len(public))
	}
}

func TestTagActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1", "a@example.com", "alice")
	makeTestDream(t, s, "dream-1", "user-1", func(d *domain.Dream) { d.IsPublic = true })
	makeTestDream(t, s, "dream-2", "user-1")

	if _, err := s.ReplaceDreamTags(ctx, "dream-1", []string{"flying", "water"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}
	if _, err := s.ReplaceDreamTags(ctx, "dream-2", []string{"flying"}); err != nil {
		t.Fatalf("ReplaceDreamTags: %v", err)
	}

	rows, err := s.TagActivity(ctx, domain.StatsScope{OwnerID: "user-1"})
	if err != nil {
		t.Fatalf("TagActivity: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("self scope: got %d rows, want 3", len(rows))
	}

	// Public scope only sees dream-1's associations.
	rows, err = s.TagActivity(ctx, domain.StatsScope{})
	if err != nil {
		t.Fatalf("TagActivity public: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("public scope: got %d rows, want 2", len(rows))
	}
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

func TestUserRepository_DuplicateEmail(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	first := r.mustCreateUser(t, "coach@example.com", domain.RoleTrainer)

	_, err := r.users.Create(ctx, &domain.User{
		Email:        "coach@example.com",
		PasswordHash: "y",
		Name:         "Impostor",
		Role:         domain.RoleParent,
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// first registration untouched
	got, err := r.users.GetByEmail(ctx, "coach@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != first.ID || got.Name != first.Name || got.Role != domain.RoleTrainer {
		t.Fatalf("first user changed: %+v", got)
	}
}

func TestUserRepository_GetMissing(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	if _, err := r.users.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.users.GetByID(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_PlayerLink(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	player := r.mustCreatePlayer(t, "Timo", 7)
	user := &domain.User{
		Email:        "parent@example.com",
		PasswordHash: "x",
		Name:         "Parent",
		Role:         domain.RoleParent,
		PlayerID:     &player.ID,
		Phone:        "+41790000000",
	}
	if _, err := r.users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := r.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PlayerID == nil || *got.PlayerID != player.ID {
		t.Fatalf("player link lost: %+v", got.PlayerID)
	}
	if got.Phone != "+41790000000" {
		t.Fatalf("unexpected phone: %s", got.Phone)
	}
}

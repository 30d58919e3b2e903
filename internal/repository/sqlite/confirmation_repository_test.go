package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

func TestConfirmationRepository_UpsertOverwrites(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	trainer := r.mustCreateUser(t, "coach@example.com", domain.RoleTrainer)
	parent := r.mustCreateUser(t, "parent@example.com", domain.RoleParent)
	player := r.mustCreatePlayer(t, "Anna", 4)
	event := r.mustCreateEvent(t, trainer.ID, "2026-09-12", "18:30")

	first := &domain.Confirmation{
		EventID:  event.ID,
		PlayerID: player.ID,
		UserID:   parent.ID,
		Status:   domain.ConfirmationConfirmed,
		Comment:  "on time",
	}
	if err := r.confirmations.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	second := &domain.Confirmation{
		EventID:  event.ID,
		PlayerID: player.ID,
		UserID:   parent.ID,
		Status:   domain.ConfirmationDeclined,
		Comment:  "sick",
	}
	if err := r.confirmations.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := r.confirmations.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("list confirmations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row for the pair, got %d", len(rows))
	}
	got := rows[0]
	if got.Status != domain.ConfirmationDeclined || got.Comment != "sick" {
		t.Fatalf("latest submission not stored: %+v", got)
	}
	if !got.ConfirmedAt.After(first.ConfirmedAt) {
		t.Fatalf("timestamp not refreshed: %v vs %v", got.ConfirmedAt, first.ConfirmedAt)
	}
}

func TestConfirmationRepository_UpsertMissingEvent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	parent := r.mustCreateUser(t, "parent@example.com", domain.RoleParent)
	player := r.mustCreatePlayer(t, "Anna", 4)

	err := r.confirmations.Upsert(ctx, &domain.Confirmation{
		EventID:  9999,
		PlayerID: player.ID,
		UserID:   parent.ID,
		Status:   domain.ConfirmationConfirmed,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing event, got %v", err)
	}
}

func TestConfirmationRepository_ListJoinsAndOrder(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	trainer := r.mustCreateUser(t, "coach@example.com", domain.RoleTrainer)
	parent := r.mustCreateUser(t, "parent@example.com", domain.RoleParent)
	zoe := r.mustCreatePlayer(t, "Zoe", 2)
	anna := r.mustCreatePlayer(t, "Anna", 11)
	event := r.mustCreateEvent(t, trainer.ID, "2026-09-12", "18:30")

	for _, c := range []domain.Confirmation{
		{EventID: event.ID, PlayerID: zoe.ID, UserID: parent.ID, Status: domain.ConfirmationConfirmed},
		{EventID: event.ID, PlayerID: anna.ID, UserID: trainer.ID, Status: domain.ConfirmationMaybe},
	} {
		if err := r.confirmations.Upsert(ctx, &c); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	rows, err := r.confirmations.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// ordered by player name, not insertion
	if rows[0].PlayerName != "Anna" || rows[1].PlayerName != "Zoe" {
		t.Fatalf("wrong order: %s, %s", rows[0].PlayerName, rows[1].PlayerName)
	}
	if rows[0].PlayerNumber != 11 {
		t.Fatalf("player join incomplete: %+v", rows[0])
	}
	if rows[1].ConfirmedBy != "User parent@example.com" {
		t.Fatalf("user join incomplete: %+v", rows[1])
	}
}

func TestConfirmationRepository_CountByEvent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	trainer := r.mustCreateUser(t, "coach@example.com", domain.RoleTrainer)
	event := r.mustCreateEvent(t, trainer.ID, "2026-09-12", "18:30")
	players := []*domain.Player{
		r.mustCreatePlayer(t, "A", 1),
		r.mustCreatePlayer(t, "B", 2),
		r.mustCreatePlayer(t, "C", 3),
	}
	statuses := []domain.ConfirmationStatus{
		domain.ConfirmationConfirmed,
		domain.ConfirmationDeclined,
		domain.ConfirmationMaybe,
	}
	for i, p := range players {
		c := &domain.Confirmation{EventID: event.ID, PlayerID: p.ID, UserID: trainer.ID, Status: statuses[i]}
		if err := r.confirmations.Upsert(ctx, c); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	att, err := r.confirmations.CountByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if att.Confirmed != 1 || att.Declined != 1 {
		t.Fatalf("unexpected attendance: %+v", att)
	}
}

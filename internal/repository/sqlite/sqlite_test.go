package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

type testRepos struct {
	db            *sql.DB
	users         repository.UserRepository
	players       repository.PlayerRepository
	events        repository.EventRepository
	confirmations repository.ConfirmationRepository
	messages      repository.MessageRepository
	news          repository.NewsRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "teamhub_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := &testRepos{
		db:            db,
		users:         NewUserRepository(db),
		players:       NewPlayerRepository(db),
		events:        NewEventRepository(db),
		confirmations: NewConfirmationRepository(db),
		messages:      NewMessageRepository(db),
		news:          NewNewsRepository(db),
	}

	ctx := context.Background()
	for _, init := range []interface {
		Init(context.Context) error
	}{r.users, r.players, r.events, r.confirmations, r.messages, r.news} {
		if err := init.Init(ctx); err != nil {
			t.Fatalf("init repository: %v", err)
		}
	}
	return r
}

func (r *testRepos) mustCreateUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: "x", Name: "User " + email, Role: role}
	if _, err := r.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (r *testRepos) mustCreatePlayer(t *testing.T, name string, number int) *domain.Player {
	t.Helper()
	player := &domain.Player{Name: name, Number: number}
	if _, err := r.players.Create(context.Background(), player); err != nil {
		t.Fatalf("create player: %v", err)
	}
	return player
}

func (r *testRepos) mustCreateEvent(t *testing.T, creator int64, date, startTime string) *domain.Event {
	t.Helper()
	event := &domain.Event{
		Type:      domain.EventTypeTraining,
		Title:     "Training",
		Date:      date,
		Time:      startTime,
		Location:  "Home pitch",
		CreatedBy: creator,
	}
	if _, err := r.events.Create(context.Background(), event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

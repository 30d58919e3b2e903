package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

// NewsListLimit caps the public news feed.
const NewsListLimit = 10

// TeamStats is the composite dashboard read: roster size, the soonest
// upcoming event, and attendance for that event when one exists.
type TeamStats struct {
	TotalPlayers        int
	NextEvent           *domain.Event
	NextEventAttendance *repository.Attendance
}

// TeamService coordinates roster, calendar and announcement operations.
type TeamService interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	CreateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, update repository.EventUpdate) error
	DeleteEvent(ctx context.Context, id int64) error

	SubmitConfirmation(ctx context.Context, c *domain.Confirmation) error
	ListConfirmations(ctx context.Context, eventID int64) ([]domain.Confirmation, error)

	ListPlayers(ctx context.Context) ([]domain.Player, error)
	CreatePlayer(ctx context.Context, player *domain.Player) (*domain.Player, error)

	SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	ListMessages(ctx context.Context, role domain.Role) ([]domain.Message, error)

	ListNews(ctx context.Context) ([]domain.News, error)
	PublishNews(ctx context.Context, article *domain.News) (*domain.News, error)

	Stats(ctx context.Context) (*TeamStats, error)
}

type teamService struct {
	events        repository.EventRepository
	confirmations repository.ConfirmationRepository
	players       repository.PlayerRepository
	messages      repository.MessageRepository
	news          repository.NewsRepository
}

func NewTeamService(
	events repository.EventRepository,
	confirmations repository.ConfirmationRepository,
	players repository.PlayerRepository,
	messages repository.MessageRepository,
	news repository.NewsRepository,
) TeamService {
	return &teamService{
		events:        events,
		confirmations: confirmations,
		players:       players,
		messages:      messages,
		news:          news,
	}
}

func (s *teamService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events.List(ctx)
}

func (s *teamService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.events.Get(ctx, id)
}

func (s *teamService) CreateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if !event.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrValidation, event.Type)
	}
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if event.Location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	}
	if _, err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *teamService) UpdateEvent(ctx context.Context, id int64, update repository.EventUpdate) error {
	if update.Empty() {
		return fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
	}
	if update.Type != nil && !update.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, *update.Type)
	}
	return s.events.Update(ctx, id, update)
}

func (s *teamService) DeleteEvent(ctx context.Context, id int64) error {
	return s.events.Delete(ctx, id)
}

func (s *teamService) SubmitConfirmation(ctx context.Context, c *domain.Confirmation) error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown confirmation status %q", ErrValidation, c.Status)
	}
	if c.PlayerID <= 0 {
		return fmt.Errorf("%w: player_id is required", ErrValidation)
	}
	return s.confirmations.Upsert(ctx, c)
}

func (s *teamService) ListConfirmations(ctx context.Context, eventID int64) ([]domain.Confirmation, error) {
	return s.confirmations.ListByEvent(ctx, eventID)
}

func (s *teamService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.players.ListActive(ctx)
}

func (s *teamService) CreatePlayer(ctx context.Context, player *domain.Player) (*domain.Player, error) {
	if player.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if player.Number < 1 || player.Number > 99 {
		return nil, fmt.Errorf("%w: number must be between 1 and 99", ErrValidation)
	}
	if _, err := s.players.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *teamService) SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if msg.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if !msg.RecipientType.Valid() {
		return nil, fmt.Errorf("%w: unknown recipient type %q", ErrValidation, msg.RecipientType)
	}
	if _, err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *teamService) ListMessages(ctx context.Context, role domain.Role) ([]domain.Message, error) {
	if role == domain.RoleTrainer {
		return s.messages.ListAll(ctx)
	}
	return s.messages.ListForRecipient(ctx, role.Recipient())
}

func (s *teamService) ListNews(ctx context.Context) ([]domain.News, error) {
	return s.news.ListPublished(ctx, NewsListLimit)
}

func (s *teamService) PublishNews(ctx context.Context, article *domain.News) (*domain.News, error) {
	if article.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if article.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if _, err := s.news.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Stats runs three dependent reads in sequence and short-circuits when no
// upcoming event exists.
func (s *teamService) Stats(ctx context.Context) (*TeamStats, error) {
	total, err := s.players.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	stats := &TeamStats{TotalPlayers: total}

	today := time.Now().Format("2006-01-02")
	next, err := s.events.NextUpcoming(ctx, today)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return stats, nil
		}
		return nil, err
	}
	stats.NextEvent = next

	att, err := s.confirmations.CountByEvent(ctx, next.ID)
	if err != nil {
		return nil, err
	}
	stats.NextEventAttendance = &att
	return stats, nil
}

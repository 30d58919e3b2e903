package repository

import (
	"context"

	"teamhub/internal/domain"
)

// EventUpdate carries the mutable event fields for a partial update. Nil
// means "leave unchanged"; only these columns can ever be written.
type EventUpdate struct {
	Type        *domain.EventType
	Title       *string
	Description *string
	Date        *string
	Time        *string
	EndTime     *string
	Location    *string
	Opponent    *string
	Status      *string
}

// Empty reports whether the update carries no fields at all.
func (u EventUpdate) Empty() bool {
	return u.Type == nil && u.Title == nil && u.Description == nil &&
		u.Date == nil && u.Time == nil && u.EndTime == nil &&
		u.Location == nil && u.Opponent == nil && u.Status == nil
}

// Attendance aggregates confirmation counts for one event.
type Attendance struct {
	Confirmed int
	Declined  int
}

// EventRepository exposes persistence operations for events.
type EventRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, event *domain.Event) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	// List returns all events with confirmed/declined counts joined in,
	// ordered by date then start time ascending.
	List(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, id int64, update EventUpdate) error
	// Delete removes the event together with its confirmations.
	Delete(ctx context.Context, id int64) error
	// NextUpcoming returns the earliest event on or after the given ISO
	// date, or ErrNotFound when none is scheduled.
	NextUpcoming(ctx context.Context, fromDate string) (*domain.Event, error)
}

// ConfirmationRepository manages attendance responses.
type ConfirmationRepository interface {
	Init(ctx context.Context) error
	// Upsert inserts the confirmation or, when one already exists for the
	// (event, player) pair, overwrites status, comment and timestamp.
	Upsert(ctx context.Context, c *domain.Confirmation) error
	// ListByEvent returns confirmations joined with player name/number and
	// the responding user's name, ordered by player name.
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Confirmation, error)
	CountByEvent(ctx context.Context, eventID int64) (Attendance, error)
}

// PlayerRepository manages roster entries.
type PlayerRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, player *domain.Player) (int64, error)
	// ListActive returns active players ordered by jersey number.
	ListActive(ctx context.Context) ([]domain.Player, error)
	CountActive(ctx context.Context) (int, error)
}

// MessageRepository manages announcements.
type MessageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg *domain.Message) (int64, error)
	// ListAll returns every message, newest first.
	ListAll(ctx context.Context) ([]domain.Message, error)
	// ListForRecipient returns messages addressed to all or to the given
	// class, newest first.
	ListForRecipient(ctx context.Context, recipient domain.RecipientType) ([]domain.Message, error)
}

// NewsRepository manages articles.
type NewsRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, article *domain.News) (int64, error)
	// ListPublished returns published articles, newest first, capped at
	// limit.
	ListPublished(ctx context.Context, limit int) ([]domain.News, error)
}

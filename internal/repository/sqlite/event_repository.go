package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	end_time TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL,
	opponent TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'scheduled',
	created_by INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (created_by) REFERENCES users(id)
);
`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (int64, error) {
	event.CreatedAt = time.Now().UTC()
	if event.Status == "" {
		event.Status = domain.EventStatusScheduled
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO events (type, title, description, date, time, end_time, location, opponent, status, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(event.Type),
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.EndTime,
		event.Location,
		event.Opponent,
		event.Status,
		event.CreatedBy,
		event.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event last insert id: %w", err)
	}
	event.ID = id
	return id, nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT e.id, e.type, e.title, e.description, e.date, e.time, e.end_time, e.location, e.opponent, e.status, e.created_by, e.created_at,
       COUNT(CASE WHEN c.status = 'confirmed' THEN 1 END),
       COUNT(CASE WHEN c.status = 'declined' THEN 1 END)
FROM events e
LEFT JOIN confirmations c ON e.id = c.event_id
WHERE e.id = ?
GROUP BY e.id`,
		id,
	)
	return scanEvent(row)
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT e.id, e.type, e.title, e.description, e.date, e.time, e.end_time, e.location, e.opponent, e.status, e.created_by, e.created_at,
       COUNT(CASE WHEN c.status = 'confirmed' THEN 1 END),
       COUNT(CASE WHEN c.status = 'declined' THEN 1 END)
FROM events e
LEFT JOIN confirmations c ON e.id = c.event_id
GROUP BY e.id
ORDER BY e.date ASC, e.time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

type eventUpdateColumns struct {
	assignments []string
	args        []any
}

func (u *eventUpdateColumns) add(column string, value any) {
	u.assignments = append(u.assignments, column+" = ?")
	u.args = append(u.args, value)
}

// collect is the explicit allow-list of mutable columns; anything not
// mapped here can never reach the UPDATE statement.
func (u *eventUpdateColumns) collect(update repository.EventUpdate) {
	if update.Type != nil {
		u.add("type", string(*update.Type))
	}
	if update.Title != nil {
		u.add("title", *update.Title)
	}
	if update.Description != nil {
		u.add("description", *update.Description)
	}
	if update.Date != nil {
		u.add("date", *update.Date)
	}
	if update.Time != nil {
		u.add("time", *update.Time)
	}
	if update.EndTime != nil {
		u.add("end_time", *update.EndTime)
	}
	if update.Location != nil {
		u.add("location", *update.Location)
	}
	if update.Opponent != nil {
		u.add("opponent", *update.Opponent)
	}
	if update.Status != nil {
		u.add("status", *update.Status)
	}
}

func (r *EventRepository) Update(ctx context.Context, id int64, update repository.EventUpdate) error {
	var cols eventUpdateColumns
	cols.collect(update)
	if len(cols.assignments) == 0 {
		return errors.New("no fields to update")
	}

	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = ?`, strings.Join(cols.assignments, ", "))
	res, err := r.db.ExecContext(ctx, query, append(cols.args, id)...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("event update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("event %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM confirmations WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete confirmations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("event delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("event %d: %w", id, repository.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event delete: %w", err)
	}
	return nil
}

func (r *EventRepository) NextUpcoming(ctx context.Context, fromDate string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, type, title, description, date, time, end_time, location, opponent, status, created_by, created_at
FROM events
WHERE date >= ?
ORDER BY date ASC, time ASC
LIMIT 1`,
		fromDate,
	)

	var (
		event     domain.Event
		eventType string
	)
	if err := row.Scan(
		&event.ID,
		&eventType,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.EndTime,
		&event.Location,
		&event.Opponent,
		&event.Status,
		&event.CreatedBy,
		&event.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("next event: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan next event: %w", err)
	}
	event.Type = domain.EventType(eventType)
	return &event, nil
}

func scanEvent(scanner interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	var (
		event     domain.Event
		eventType string
	)
	if err := scanner.Scan(
		&event.ID,
		&eventType,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.EndTime,
		&event.Location,
		&event.Opponent,
		&event.Status,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.ConfirmedCount,
		&event.DeclinedCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.Type = domain.EventType(eventType)
	return &event, nil
}

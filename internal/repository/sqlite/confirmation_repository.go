package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

const createConfirmationsTable = `
CREATE TABLE IF NOT EXISTS confirmations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id INTEGER NOT NULL,
	player_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	confirmed_at DATETIME NOT NULL,
	FOREIGN KEY (event_id) REFERENCES events(id),
	FOREIGN KEY (player_id) REFERENCES players(id),
	FOREIGN KEY (user_id) REFERENCES users(id),
	UNIQUE(event_id, player_id)
);
`

type ConfirmationRepository struct {
	db *sql.DB
}

func NewConfirmationRepository(db *sql.DB) repository.ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

func (r *ConfirmationRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createConfirmationsTable); err != nil {
		return fmt.Errorf("create confirmations table: %w", err)
	}
	return nil
}

// Upsert delegates the (event_id, player_id) uniqueness invariant to
// sqlite's atomic conflict clause; there is no application-level
// check-then-act.
func (r *ConfirmationRepository) Upsert(ctx context.Context, c *domain.Confirmation) error {
	c.ConfirmedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO confirmations (event_id, player_id, user_id, status, comment, confirmed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(event_id, player_id)
DO UPDATE SET status = ?, comment = ?, user_id = ?, confirmed_at = ?`,
		c.EventID,
		c.PlayerID,
		c.UserID,
		string(c.Status),
		c.Comment,
		c.ConfirmedAt,
		string(c.Status),
		c.Comment,
		c.UserID,
		c.ConfirmedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("confirmation target: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("upsert confirmation: %w", err)
	}
	return nil
}

func (r *ConfirmationRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Confirmation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.event_id, c.player_id, c.user_id, c.status, c.comment, c.confirmed_at,
       p.name, p.number, u.name
FROM confirmations c
JOIN players p ON c.player_id = p.id
JOIN users u ON c.user_id = u.id
WHERE c.event_id = ?
ORDER BY p.name ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query confirmations: %w", err)
	}
	defer rows.Close()

	var confirmations []domain.Confirmation
	for rows.Next() {
		var (
			c      domain.Confirmation
			status string
		)
		if err := rows.Scan(
			&c.ID,
			&c.EventID,
			&c.PlayerID,
			&c.UserID,
			&status,
			&c.Comment,
			&c.ConfirmedAt,
			&c.PlayerName,
			&c.PlayerNumber,
			&c.ConfirmedBy,
		); err != nil {
			return nil, fmt.Errorf("scan confirmation: %w", err)
		}
		c.Status = domain.ConfirmationStatus(status)
		confirmations = append(confirmations, c)
	}

	return confirmations, rows.Err()
}

func (r *ConfirmationRepository) CountByEvent(ctx context.Context, eventID int64) (repository.Attendance, error) {
	var att repository.Attendance
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(CASE WHEN status = 'confirmed' THEN 1 END),
       COUNT(CASE WHEN status = 'declined' THEN 1 END)
FROM confirmations
WHERE event_id = ?`,
		eventID,
	).Scan(&att.Confirmed, &att.Declined); err != nil {
		return repository.Attendance{}, fmt.Errorf("count confirmations: %w", err)
	}
	return att, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id INTEGER NOT NULL,
	subject TEXT NOT NULL,
	content TEXT NOT NULL,
	recipient_type TEXT NOT NULL DEFAULT 'all',
	event_id INTEGER NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (event_id) REFERENCES events(id)
);
`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) (int64, error) {
	msg.CreatedAt = time.Now().UTC()
	if msg.RecipientType == "" {
		msg.RecipientType = domain.RecipientAll
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO messages (sender_id, subject, content, recipient_type, event_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		msg.SenderID,
		msg.Subject,
		msg.Content,
		string(msg.RecipientType),
		nullInt64(msg.EventID),
		msg.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message last insert id: %w", err)
	}
	msg.ID = id
	return id, nil
}

const selectMessages = `
SELECT m.id, m.sender_id, m.subject, m.content, m.recipient_type, m.event_id, m.created_at, u.name
FROM messages m
JOIN users u ON m.sender_id = u.id`

func (r *MessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, selectMessages+`
ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *MessageRepository) ListForRecipient(ctx context.Context, recipient domain.RecipientType) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, selectMessages+`
WHERE m.recipient_type = 'all' OR m.recipient_type = ?
ORDER BY m.created_at DESC`,
		string(recipient),
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		var (
			m         domain.Message
			recipient string
			eventID   sql.NullInt64
		)
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.Subject,
			&m.Content,
			&recipient,
			&eventID,
			&m.CreatedAt,
			&m.SenderName,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.RecipientType = domain.RecipientType(recipient)
		if eventID.Valid {
			m.EventID = &eventID.Int64
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

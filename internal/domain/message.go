package domain

import "time"

type RecipientType string

const (
	RecipientAll     RecipientType = "all"
	RecipientParents RecipientType = "parents"
	RecipientPlayers RecipientType = "players"
)

func (r RecipientType) Valid() bool {
	switch r {
	case RecipientAll, RecipientParents, RecipientPlayers:
		return true
	}
	return false
}

// Message is an announcement addressed to a recipient class.
type Message struct {
	ID            int64
	SenderID      int64
	Subject       string
	Content       string
	RecipientType RecipientType
	EventID       *int64
	CreatedAt     time.Time

	SenderName string
}

// News is a publishable article; only published articles are visible
// outside the trainer role.
type News struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64
	Published bool
	CreatedAt time.Time

	AuthorName string
}

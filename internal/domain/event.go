package domain

import "time"

type EventType string

const (
	EventTypeTraining   EventType = "training"
	EventTypeMatch      EventType = "match"
	EventTypeTournament EventType = "tournament"
	EventTypeOther      EventType = "other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeTraining, EventTypeMatch, EventTypeTournament, EventTypeOther:
		return true
	}
	return false
}

const EventStatusScheduled = "scheduled"

// Event is a scheduled occurrence on the team calendar. Date is an ISO
// calendar date (2006-01-02); Time and EndTime are 24h clock values (15:04)
// so that lexical ordering matches chronological ordering.
type Event struct {
	ID          int64
	Type        EventType
	Title       string
	Description string
	Date        string
	Time        string
	EndTime     string
	Location    string
	Opponent    string
	Status      string
	CreatedBy   int64
	CreatedAt   time.Time

	// Aggregates joined in by the events listing.
	ConfirmedCount int
	DeclinedCount  int
}

type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationDeclined  ConfirmationStatus = "declined"
	ConfirmationMaybe     ConfirmationStatus = "maybe"
)

func (s ConfirmationStatus) Valid() bool {
	switch s {
	case ConfirmationConfirmed, ConfirmationDeclined, ConfirmationMaybe:
		return true
	}
	return false
}

// Confirmation is an attendance response. At most one exists per
// (event, player) pair; resubmission overwrites status, comment and
// timestamp.
type Confirmation struct {
	ID          int64
	EventID     int64
	PlayerID    int64
	UserID      int64
	Status      ConfirmationStatus
	Comment     string
	ConfirmedAt time.Time

	// Joined fields for listings.
	PlayerName   string
	PlayerNumber int
	ConfirmedBy  string
}

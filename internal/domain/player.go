package domain

import "time"

type PlayerStatus string

const (
	PlayerStatusActive   PlayerStatus = "active"
	PlayerStatusInactive PlayerStatus = "inactive"
)

// Player is a roster entry managed by the trainer.
type Player struct {
	ID        int64
	Name      string
	Number    int
	BirthDate string
	Position  string
	Status    PlayerStatus
	CreatedAt time.Time
}

package domain

import "time"

type Role string

const (
	RoleTrainer Role = "trainer"
	RoleParent  Role = "parent"
	RolePlayer  Role = "player"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainer, RoleParent, RolePlayer:
		return true
	}
	return false
}

// Recipient maps a role to the message recipient class it reads.
// Trainers have no class of their own; they see everything.
func (r Role) Recipient() RecipientType {
	switch r {
	case RoleParent:
		return RecipientParents
	case RolePlayer:
		return RecipientPlayers
	}
	return RecipientAll
}

// User represents an authenticated account in the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	PlayerID     *int64
	Phone        string
	CreatedAt    time.Time
}

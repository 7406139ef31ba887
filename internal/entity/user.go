package entity

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one the system knows about.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Identity is the resolved caller: who is acting and in what role.
// It is produced once per request by the auth middleware and passed
// explicitly into every service call; services never re-derive the role
// from stored data.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Role      Role   `json:"role"`
}

package domain

import "time"

// Role is fixed at signup.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
)

func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleLandlord
}

// User is an account plus its profile record.
type User struct {
	ID           string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// IsAnonymous reports whether no identity has been resolved.
func (u User) IsAnonymous() bool {
	return u.ID == ""
}

package domain

import "time"

type UserID string

type UserRole string

const (
	RoleDoctor  UserRole = "doctor"
	RolePatient UserRole = "patient"
)

type User struct {
	ID             UserID
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           UserRole
	Specialization string // doctors only
	CreatedAt      time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Profile is the snapshot of a user attached to a live connection at
// authentication time. It never contains credentials.
type Profile struct {
	UserID    UserID   `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `json:"role"`
}

func (u *User) Snapshot() Profile {
	return Profile{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func (p Profile) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

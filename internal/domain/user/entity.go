package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"   // Staff account - manages students, sessions, leave
	RoleStudent Role = "student" // Student account - marks own attendance
)

type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    *string
	Role            Role
	StudentCode     *string // set for student accounts, e.g. STU20260042
	OAuthProvider   *string
	OAuthProviderID *string
	IsActive        bool
	LastLoginDevice *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent checks if the user holds the student role
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

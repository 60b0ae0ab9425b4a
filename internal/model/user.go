package model

import "time"

// Role values stored in users.role and carried in JWT claims.
const (
	RoleStudent      = "STUDENT"
	RoleTeacher      = "TEACHER"
	RoleVideographer = "VIDEOGRAPHER"
	RoleAdmin        = "ADMIN"
)

// ValidRole reports whether s is one of the four known roles.
func ValidRole(s string) bool {
	switch s {
	case RoleStudent, RoleTeacher, RoleVideographer, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the 'users' table. PasswordHash never leaves the backend;
// responses carry the Sanitize() projection instead.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SanitizedUser is the wire representation of a user with the password hash
// stripped.
type SanitizedUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Sanitize returns the user without its password hash.
func (u User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

package model

import "time"

// TeacherProfile mirrors the 'teacher_profiles' table. An empty profile is
// created automatically when a user registers with the TEACHER role.
type TeacherProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Bio         string    `json:"bio,omitempty"`
	Specialties []string  `json:"specialties"`
	ContactInfo string    `json:"contactInfo,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

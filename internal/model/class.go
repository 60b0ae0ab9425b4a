package model

import "time"

// Class type values stored in classes.type.
const (
	ClassRegular = "REGULAR"
	ClassSpecial = "SPECIAL"
	ClassBreak   = "BREAK"
)

// RSVP status values stored in rsvps.status.
const (
	RSVPConfirmed = "CONFIRMED"
	RSVPWaitlist  = "WAITLIST"
	RSVPCancelled = "CANCELLED"
)

// Class mirrors the 'classes' table. InstructorName is joined from the
// instructor's user record for listings; ConfirmedRSVPs is a derived count.
type Class struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	InstructorID   string    `json:"instructorId"`
	InstructorName string    `json:"instructorName,omitempty"`
	Date           time.Time `json:"date"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	Capacity       int       `json:"capacity"`
	Type           string    `json:"type"`
	Location       string    `json:"location,omitempty"`
	IsActive       bool      `json:"isActive"`
	ConfirmedRSVPs int       `json:"currentRSVPs"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RSVP mirrors the 'rsvps' table; one row per (user, class).
type RSVP struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ClassID   string    `json:"classId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

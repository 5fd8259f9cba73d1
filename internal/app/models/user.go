package models

import "time"

// Gender of a user, fixed at signup from the portal profile.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// User defines the user model based on the 'users' table.
// The ID is the durable account key (the portal student number) and is
// immutable after signup. MeetupID is the user's single meetup reference;
// it is non-nil exactly when the user appears in that meetup's member set.
type User struct {
	ID        string    `json:"id" db:"id" example:"201701234"`           // Portal account ID
	Name      string    `json:"name" db:"name" example:"Anonymous Otter"` // System-assigned display name
	Gender    Gender    `json:"gender" db:"gender" example:"MALE"`        // Set once at signup
	MeetupID  *int64    `json:"meetupId,omitempty" db:"meetup_id"`        // Current meetup, nil when unaffiliated
	CreatedAt time.Time `json:"createdAt" db:"created_at"`                // Timestamp when the user signed up
}

// IsMember reports whether the user currently occupies a meetup.
func (u *User) IsMember() bool {
	return u != nil && u.MeetupID != nil
}

package models

import "time"

// Meetup represents a capacity-bounded ad-hoc group with a shared transcript
type Meetup struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Place     string    `json:"place" db:"place"`
	MeetTime  string    `json:"meetTime" db:"meet_time"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Occupancy is the current member count, computed on read, never stored.
	Occupancy int `json:"occupancy"`

	// Related entities
	Members    []*User      `json:"members,omitempty"`
	Transcript []*ChatEntry `json:"transcript,omitempty"`
}

// IsAvailable reports whether the meetup still has an open slot.
// Display only; admission re-checks inside the store transaction.
func (m *Meetup) IsAvailable() bool {
	return m.Occupancy < m.Capacity
}

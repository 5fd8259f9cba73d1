package models

import "time"

// ChatEntry represents one line of a meetup transcript, based on the
// 'chat_entries' table. Entries are append-only; their insertion order is the
// causal arrival order at the server, not the client send time.
type ChatEntry struct {
	ID          int64     `json:"id" db:"id"`
	MeetupID    int64     `json:"meetupId" db:"meetup_id"`
	AuthorID    *string   `json:"authorId,omitempty" db:"author_id"` // nil for system entries
	AuthorName  string    `json:"authorName" db:"author_name"`
	Body        string    `json:"body" db:"body"`
	IsSystem    bool      `json:"isSystem" db:"is_system"`
	DisplayTime string    `json:"displayTime" db:"display_time"` // server-assigned wall clock, "h:mm am/pm"
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

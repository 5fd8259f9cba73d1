// Package events is the in-process publish/subscribe fan-out for meetup state
// changes and chat. Channels are named: a single lobby channel carries
// summary-level updates, and each meetup has its own channel for transcript
// and occupancy updates.
package events

import "fmt"

// Type names an event on the stream surface.
type Type string

const (
	TypeChatAppended      Type = "CHAT_APPENDED"
	TypeMembershipChanged Type = "MEMBERSHIP_CHANGED"
	TypeMeetupListChanged Type = "MEETUP_LIST_CHANGED"
)

// Lobby is the channel every connected caller subscribes to by default.
const Lobby = "lobby"

// MeetupChannel returns the channel name for a meetup's own event stream.
func MeetupChannel(meetupID int64) string {
	return fmt.Sprintf("meetup:%d", meetupID)
}

// Entry is the chat payload carried by a ChatAppended event.
type Entry struct {
	ID          int64  `json:"id"`
	AuthorName  string `json:"authorName,omitempty"`
	Body        string `json:"body"`
	IsSystem    bool   `json:"isSystem"`
	DisplayTime string `json:"displayTime"`
}

// Summary is the lobby payload carried by a MeetupListChanged event.
type Summary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Place     string `json:"place"`
	MeetTime  string `json:"meetTime"`
	Capacity  int    `json:"capacity"`
	Occupancy int    `json:"occupancy"`
	Available bool   `json:"available"`
}

// Event is one item on a channel. Exactly one payload field is set,
// matching Type.
type Event struct {
	Type      Type     `json:"type"`
	MeetupID  int64    `json:"meetupId,omitempty"`
	Entry     *Entry   `json:"entry,omitempty"`
	Occupancy *int     `json:"occupancy,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
}

// ChatAppended builds a transcript event for a meetup channel.
func ChatAppended(meetupID int64, entry Entry) Event {
	return Event{Type: TypeChatAppended, MeetupID: meetupID, Entry: &entry}
}

// MembershipChanged builds an occupancy event for a meetup channel.
func MembershipChanged(meetupID int64, occupancy int) Event {
	return Event{Type: TypeMembershipChanged, MeetupID: meetupID, Occupancy: &occupancy}
}

// MeetupListChanged builds a summary event for the lobby channel.
func MeetupListChanged(summary Summary) Event {
	return Event{Type: TypeMeetupListChanged, MeetupID: summary.ID, Summary: &summary}
}
